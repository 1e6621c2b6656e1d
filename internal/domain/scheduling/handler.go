package scheduling

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vetlink/vetlink/internal/platform/auth"
	"github.com/vetlink/vetlink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.Book, auth.RequireRole("admin", "staff", "owner"))
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)

	staffGroup := api.Group("", auth.RequireRole("admin", "vet", "staff"))
	staffGroup.POST("/appointments/:id/confirm", h.Confirm)
	staffGroup.POST("/appointments/:id/complete", h.Complete)

	api.POST("/appointments/:id/cancel", h.Cancel, auth.RequireRole("admin", "vet", "staff", "owner"))
}

func (h *Handler) Book(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Book(c.Request().Context(), &a); err != nil {
		if IsConflict(err) {
			return echo.NewHTTPError(http.StatusConflict, "slot already booked")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if petID := c.QueryParam("pet_id"); petID != "" {
		pid, err := uuid.Parse(petID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid pet_id")
		}
		items, total, err := h.svc.ListByPet(ctx, pid, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	clinicID := c.QueryParam("clinic_id")
	if clinicID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "pet_id or clinic_id is required")
	}
	cid, err := uuid.Parse(clinicID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic_id")
	}
	from, to, err := dateRange(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, total, err := h.svc.ListByClinic(ctx, cid, from, to, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func dateRange(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 30)
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date, expected YYYY-MM-DD")
		}
		from = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date, expected YYYY-MM-DD")
		}
		to = t
	}
	return from, to, nil
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.doTransition(c, h.svc.Confirm)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.doTransition(c, h.svc.Complete)
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.doTransition(c, h.svc.Cancel)
}

func (h *Handler) doTransition(c echo.Context, fn func(ctx context.Context, id uuid.UUID) (*Appointment, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := fn(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		case errors.Is(err, ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, a)
}
