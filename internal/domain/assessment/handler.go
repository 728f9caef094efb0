package assessment

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
	"github.com/markgannott/menopause-kp-cdst/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("admin", "clinician")

	g := api.Group("", role)
	g.POST("/assessments", h.CreateAssessment)
	g.POST("/assessments/kp-risk", h.ScoreKPRisk)
	g.GET("/assessments/kp-risk/trajectory", h.KPTrajectory)
	g.POST("/assessments/treatment-ranking", h.RankTreatments)
	g.POST("/assessments/dementia-risk", h.ScoreDementiaRisk)
	g.POST("/assessments/cost-offsets", h.CostOffsets)
}

func (h *Handler) CreateAssessment(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Assess(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ScoreKPRisk(c echo.Context) error {
	var req KPRiskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.ScoreKP(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) KPTrajectory(c echo.Context) error {
	pop := patient.Population(c.QueryParam("population"))
	sample := patient.SampleType(c.QueryParam("sample_type"))
	if sample == "" {
		sample = patient.SampleSerum
	}
	points, err := h.svc.Trajectory(pop, sample)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"population":  orDefault(pop),
		"sample_type": sample,
		"points":      points,
	})
}

func (h *Handler) RankTreatments(c echo.Context) error {
	a, err := h.assess(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"kp_risk":    a.KPRisk,
		"treatments": a.Treatments,
	})
}

func (h *Handler) ScoreDementiaRisk(c echo.Context) error {
	a, err := h.assess(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"kp_risk":       a.KPRisk,
		"dementia_risk": a.Dementia,
	})
}

func (h *Handler) CostOffsets(c echo.Context) error {
	a, err := h.assess(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cost_offsets":   a.CostOffsets,
		"national_scale": a.National,
		"cost_avoidance": a.CostAvoidance,
	})
}

func (h *Handler) assess(c echo.Context) (*Assessment, error) {
	var req Request
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Assess(c.Request().Context(), req)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return a, nil
}

func orDefault(pop patient.Population) patient.Population {
	if pop == "" {
		return patient.PopulationAustralian
	}
	return pop
}
