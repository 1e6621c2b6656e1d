package matching

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vetlink/vetlink/internal/domain/clinic"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/matching/clinics", h.FindBestClinics)
	api.GET("/clinics/:id/availability", h.CheckAvailability)
}

type matchRequest struct {
	Triage   TriageResult `json:"triage"`
	Location *Location    `json:"location,omitempty"`
}

func (h *Handler) FindBestClinics(c echo.Context) error {
	var req matchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Triage.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	results, err := h.svc.FindBestClinics(c.Request().Context(), &req.Triage, req.Location)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if results == nil {
		results = []*ScoredClinic{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"matches": results,
		"count":   len(results),
	})
}

func (h *Handler) CheckAvailability(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	q := AvailabilityQuery{Urgency: c.QueryParam("urgency")}
	if d := c.QueryParam("duration"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid duration")
		}
		q.DurationMinutes = n
	}
	if s := c.QueryParam("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		}
		q.StartDate = &t
	}
	if s := c.QueryParam("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
		}
		q.EndDate = &t
	}
	if (q.StartDate == nil) != (q.EndDate == nil) {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date and end_date must be provided together")
	}

	slots, err := h.svc.CheckClinicAvailability(c.Request().Context(), id, q)
	if err != nil {
		if errors.Is(err, clinic.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "clinic not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if slots == nil {
		slots = []CandidateSlot{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"clinic_id": id,
		"slots":     slots,
		"count":     len(slots),
	})
}
