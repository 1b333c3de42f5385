package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GlossaryTerm is one entry in the aurora glossary.
type GlossaryTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

var glossaryTerms = []GlossaryTerm{
	{
		Term:       "Kp Index",
		Definition: "A global index for measuring geomagnetic activity, useful in aurora predictions.",
	},
	{
		Term:       "Solar Wind Speed",
		Definition: "The velocity of particles emitted from the Sun.",
	},
	{
		Term:       "Bz",
		Definition: "A component of the interplanetary magnetic field. A southward Bz enhances auroral activity.",
	},
	{
		Term:       "UV Index",
		Definition: "A measure of ultraviolet radiation from the Sun and its impact on human health.",
	},
}

// GlossaryHandler serves the static aurora glossary.
type GlossaryHandler struct{}

// NewGlossaryHandler creates a new GlossaryHandler.
func NewGlossaryHandler() *GlossaryHandler {
	return &GlossaryHandler{}
}

// RegisterGlossaryRoutes registers the glossary route.
func (h *GlossaryHandler) RegisterGlossaryRoutes(g *echo.Group) {
	g.GET("", h.GetGlossary)
}

// GetGlossary returns the glossary terms.
func (h *GlossaryHandler) GetGlossary(c echo.Context) error {
	return respondOK(c, http.StatusOK, "", glossaryTerms)
}
