package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/lrchart/chartai/internal/analysis"
	"github.com/lrchart/chartai/internal/api/response"
	"github.com/lrchart/chartai/internal/app"
	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/ui"
)

// ChartField is the multipart field carrying the chart screenshot.
const ChartField = "chart"

// AnalysisApp is the part of app.App the AI endpoints need.
type AnalysisApp interface {
	AnalyzeChart(ctx context.Context, image []byte, mimeType string) (*app.ChartVerdict, string, error)
	Forecast(ctx context.Context, image []byte, mimeType, pair string) (*app.Forecast, string, error)
}

// AnalysisRequest is the JSON form of an analysis request. The image may be
// plain base64 or a data URL.
type AnalysisRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
	Pair        string `json:"pair" validate:"max=64"`
}

// AnalysisHandler handles AI chart analysis requests.
type AnalysisHandler struct {
	app      AnalysisApp
	maxBytes int64
}

// NewAnalysisHandler creates a new analysis handler accepting uploads of up
// to maxBytes.
func NewAnalysisHandler(app AnalysisApp, maxBytes int64) *AnalysisHandler {
	return &AnalysisHandler{app: app, maxBytes: maxBytes}
}

// Chart returns a single CALL/PUT verdict for an uploaded chart.
func (h *AnalysisHandler) Chart(w http.ResponseWriter, r *http.Request) {
	image, _, err := h.readUpload(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	v, jobID, err := h.app.AnalyzeChart(r.Context(), image, analysis.DetectMIME(image))
	if err != nil {
		h.fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"job_id":   jobID,
		"batch_id": v.BatchID,
		"signal":   v.Signal,
		"reason":   v.Reason,
	})
}

// Future returns AI signals for a pair over the next 30 minutes.
func (h *AnalysisHandler) Future(w http.ResponseWriter, r *http.Request) {
	image, pair, err := h.readUpload(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	f, jobID, err := h.app.Forecast(r.Context(), image, analysis.DetectMIME(image), pair)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := map[string]any{
		"job_id":   jobID,
		"batch_id": f.BatchID,
		"pair":     f.Pair,
		"signals":  f.Signals,
	}
	if len(f.Signals) == 0 {
		resp["message"] = ui.MsgNoSignals
	}
	response.JSON(w, http.StatusOK, resp)
}

// readUpload accepts either a multipart form with a chart file and a pair
// field, or a JSON AnalysisRequest.
func (h *AnalysisHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.readMultipart(r)
	}

	var req AnalysisRequest
	if err := decodeJSON(r, &req, false); err != nil {
		return nil, "", err
	}

	data := req.ImageBase64
	if _, payload, ok := strings.Cut(data, ";base64,"); ok && strings.HasPrefix(data, "data:") {
		data = payload
	}
	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", core.WrapError(core.ErrBadRequest, fmt.Errorf("image_base64: %w", err))
	}
	return image, req.Pair, nil
}

func (h *AnalysisHandler) readMultipart(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		return nil, "", core.WrapError(core.ErrBadRequest, err)
	}

	pair := r.FormValue("pair")
	file, _, err := r.FormFile(ChartField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, pair, core.ErrImageRequired
	}
	if err != nil {
		return nil, pair, core.WrapError(core.ErrBadRequest, err)
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return nil, pair, core.WrapError(core.ErrBadRequest, err)
	}
	return image, pair, nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func (h *AnalysisHandler) fail(w http.ResponseWriter, err error) {
	var te *app.TimeoutError
	if errors.As(err, &te) {
		response.Timeout(w, ui.MsgTimeout, te.JobID)
		return
	}
	if tooLarge(err) {
		response.Error(w, http.StatusRequestEntityTooLarge,
			core.WrapError(core.ErrBadRequest, fmt.Errorf("upload exceeds %d MB", h.maxBytes>>20)))
		return
	}
	response.Error(w, response.StatusFor(err), err)
}
