package api

import (
	"net/http"

	"github.com/lrchart/chartai/internal/api/response"
)

// PairsApp is the part of app.App the pair endpoints need.
type PairsApp interface {
	Pairs(term string) []string
	Timeframes() []string
}

// PairsHandler serves the pair catalog.
type PairsHandler struct {
	app PairsApp
}

// NewPairsHandler creates a new pairs handler.
func NewPairsHandler(app PairsApp) *PairsHandler {
	return &PairsHandler{app: app}
}

// List returns the pairs matching ?q=, in catalog order.
func (h *PairsHandler) List(w http.ResponseWriter, r *http.Request) {
	pairs := h.app.Pairs(r.URL.Query().Get("q"))
	if pairs == nil {
		pairs = []string{}
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"pairs":      pairs,
		"total":      len(pairs),
		"timeframes": h.app.Timeframes(),
	})
}
