package api

import (
	"context"
	"net/http"

	"github.com/lrchart/chartai/internal/api/response"
	"github.com/lrchart/chartai/internal/core"
)

// SignalsApp is the part of app.App the generator endpoints need.
type SignalsApp interface {
	NextSignal(ctx context.Context, pair, timeframe string) (core.Batch, error)
	FutureList(ctx context.Context) (core.Batch, error)
	Render(b core.Batch) string
}

// NextSignalRequest is the request body for the next-minute signal.
type NextSignalRequest struct {
	Pair      string `json:"pair" validate:"required,max=64"`
	Timeframe string `json:"timeframe" validate:"max=16"`
}

// SignalsHandler handles synthetic signal requests.
type SignalsHandler struct {
	app SignalsApp
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(app SignalsApp) *SignalsHandler {
	return &SignalsHandler{app: app}
}

// Next draws the signal for the next minute.
func (h *SignalsHandler) Next(w http.ResponseWriter, r *http.Request) {
	var req NextSignalRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	b, err := h.app.NextSignal(r.Context(), req.Pair, req.Timeframe)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{
		"batch":  b,
		"signal": b.Signals[0],
		"report": h.app.Render(b),
	})
}

// Future generates a future signal list.
func (h *SignalsHandler) Future(w http.ResponseWriter, r *http.Request) {
	b, err := h.app.FutureList(r.Context())
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{
		"batch":  b,
		"report": h.app.Render(b),
	})
}
