package triage

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vetlink/vetlink/internal/domain/matching"
	"github.com/vetlink/vetlink/internal/platform/auth"
)

// clinicSuggestionLimit caps the number of clinics attached to an
// assessment response.
const clinicSuggestionLimit = 5

type Handler struct {
	svc     *Service
	matcher *matching.Service
}

func NewHandler(svc *Service, matcher *matching.Service) *Handler {
	return &Handler{svc: svc, matcher: matcher}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/triage/assess", h.Assess)

	rules := api.Group("/triage/rules", auth.RequireRole("admin", "vet"))
	rules.GET("", h.ListRules)
	rules.POST("", h.CreateRule)
	rules.GET("/:id", h.GetRule)
	rules.PUT("/:id", h.UpdateRule)
	rules.DELETE("/:id", h.DeleteRule)
}

type assessRequest struct {
	Symptoms map[string]map[string]interface{} `json:"symptoms"`
	Location *matching.Location                `json:"location,omitempty"`
}

type assessResponse struct {
	Assessment *Assessment              `json:"assessment"`
	Clinics    []*matching.ScoredClinic `json:"clinics,omitempty"`
}

// Assess runs the rule engine and, when a location is supplied, asks
// the matcher for clinics fitting the verdict.
func (h *Handler) Assess(c echo.Context) error {
	var req assessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	assessment, err := h.svc.Assess(c.Request().Context(), req.Symptoms)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := assessResponse{Assessment: assessment}
	if req.Location != nil {
		matches, err := h.matcher.FindBestClinics(c.Request().Context(), assessment.TriageResult(), req.Location)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if len(matches) > clinicSuggestionLimit {
			matches = matches[:clinicSuggestionLimit]
		}
		resp.Clinics = matches
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateRule(c echo.Context) error {
	var r Rule
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRule(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetRule(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "rule not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListRules(c echo.Context) error {
	rules, err := h.svc.ListRules(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rules == nil {
		rules = []*Rule{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rules": rules})
}

func (h *Handler) UpdateRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var r Rule
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.ID = id
	if err := h.svc.UpdateRule(c.Request().Context(), &r); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "rule not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRule(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "rule not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
