// Package reference exposes the read-only reference tables over HTTP:
// normative ranges, regression effects, the treatment table, condition
// burdens, and the research gap register.
package reference

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/markgannott/menopause-kp-cdst/internal/platform/auth"
	"github.com/markgannott/menopause-kp-cdst/internal/refdata"
	"github.com/markgannott/menopause-kp-cdst/pkg/pagination"
)

type Handler struct {
	ref *refdata.Reference
}

func NewHandler(ref *refdata.Reference) *Handler {
	return &Handler{ref: ref}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("admin", "clinician", "researcher")

	g := api.Group("/reference", role)
	g.GET("/norms", h.ListNorms)
	g.GET("/age-effects", h.ListAgeEffects)
	g.GET("/treatments", h.ListTreatments)
	g.GET("/treatments/:name", h.GetTreatment)
	g.GET("/conditions", h.ListConditions)
	g.GET("/research-gaps", h.ListResearchGaps)
	g.GET("/stromberg", h.GetStromberg)
}

func (h *Handler) ListNorms(c echo.Context) error {
	return c.JSON(http.StatusOK, h.ref.Norms())
}

func (h *Handler) ListAgeEffects(c echo.Context) error {
	return c.JSON(http.StatusOK, h.ref.AgeEffects())
}

func (h *Handler) ListTreatments(c echo.Context) error {
	type entry struct {
		refdata.Treatment
		Evidence refdata.EvidenceProfile `json:"evidence_profile"`
	}
	treatments := h.ref.Treatments()
	out := make([]entry, 0, len(treatments))
	for _, t := range treatments {
		ev, _ := h.ref.EvidenceProfile(t.Name)
		out = append(out, entry{Treatment: t, Evidence: ev})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetTreatment(c echo.Context) error {
	t, err := h.ref.Treatment(refdata.TreatmentName(c.Param("name")))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListConditions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.ref.Conditions())
}

func (h *Handler) ListResearchGaps(c echo.Context) error {
	pg := pagination.FromContext(c)
	gaps := h.ref.ResearchGaps()
	lo, hi := pg.Slice(len(gaps))
	return c.JSON(http.StatusOK, pagination.NewResponse(gaps[lo:hi], len(gaps), pg.Limit, pg.Offset))
}

func (h *Handler) GetStromberg(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"per_woman_indirect_loss": refdata.PerWomanIndirectLoss,
		"decomposition":           h.ref.Stromberg(),
	})
}
