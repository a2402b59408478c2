package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrchart/chartai/internal/api/job"
	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/ui"
)

func multipartBody(t *testing.T, image []byte, pair string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if image != nil {
		fw, err := mw.CreateFormFile(ChartField, "chart.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	if pair != "" {
		require.NoError(t, mw.WriteField("pair", pair))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAnalysisHandler_Chart_Multipart(t *testing.T) {
	an := &mockAnalyzer{chart: &core.AnalysisResult{Signal: core.DirectionCall, Reason: "Higher lows on the 1m chart."}}
	handler := NewAnalysisHandler(newTestApp(t, an), 10<<20)

	body, ct := multipartBody(t, pngBytes, "")
	req := httptest.NewRequest("POST", "/api/v1/analysis/chart", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	handler.Chart(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "CALL", data["signal"])
	assert.Equal(t, "Higher lows on the 1m chart.", data["reason"])
	assert.NotEmpty(t, data["job_id"])
	assert.NotEmpty(t, data["batch_id"])
}

func TestAnalysisHandler_Chart_JSONDataURL(t *testing.T) {
	an := &mockAnalyzer{chart: &core.AnalysisResult{Signal: core.DirectionPut, Reason: "Lower highs."}}
	handler := NewAnalysisHandler(newTestApp(t, an), 10<<20)

	payload := `{"image_base64": "data:image/png;base64,` + base64.StdEncoding.EncodeToString(pngBytes) + `"}`
	req := httptest.NewRequest("POST", "/api/v1/analysis/chart", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Chart(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PUT", decodeData(t, w)["signal"])
}

func TestAnalysisHandler_Chart_Errors(t *testing.T) {
	an := &mockAnalyzer{err: core.WrapError(core.ErrAnalysisFailed, core.ErrInvalidResponse)}
	handler := NewAnalysisHandler(newTestApp(t, an), 1<<20)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"no image", `{}`, http.StatusBadRequest, "IMAGE_REQUIRED"},
		{"bad base64", `{"image_base64": "***"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"gif", `{"image_base64": "` + base64.StdEncoding.EncodeToString([]byte("GIF89a......")) + `"}`, http.StatusUnsupportedMediaType, "UNSUPPORTED_IMAGE"},
		{"model failure", `{"image_base64": "` + base64.StdEncoding.EncodeToString(pngBytes) + `"}`, http.StatusBadGateway, "ANALYSIS_FAILED"},
		{"too large", `{"image_base64": "` + strings.Repeat("A", 2<<20) + `"}`, http.StatusRequestEntityTooLarge, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/analysis/chart", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			handler.Chart(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestAnalysisHandler_Chart_MissingFile(t *testing.T) {
	handler := NewAnalysisHandler(newTestApp(t, &mockAnalyzer{}), 10<<20)

	body, ct := multipartBody(t, nil, "EUR/USD (OTC)")
	req := httptest.NewRequest("POST", "/api/v1/analysis/chart", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	handler.Chart(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "IMAGE_REQUIRED", decodeError(t, w).Code)
}

func TestAnalysisHandler_Chart_TimeoutReturnsJob(t *testing.T) {
	an := &mockAnalyzer{
		chart:   &core.AnalysisResult{Signal: core.DirectionCall, Reason: "Eventually."},
		release: make(chan struct{}),
	}
	a := newTestApp(t, an)
	handler := NewAnalysisHandler(a, 10<<20)

	body, ct := multipartBody(t, pngBytes, "")
	req := httptest.NewRequest("POST", "/api/v1/analysis/chart", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	handler.Chart(w, req)

	require.Equal(t, http.StatusGatewayTimeout, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, "ANALYSIS_TIMEOUT", detail.Code)
	assert.Equal(t, ui.MsgTimeout, detail.Message)
	require.NotEmpty(t, detail.JobID)

	j, err := a.Job(detail.JobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusRunning, j.Status)

	close(an.release)
	assert.Eventually(t, func() bool {
		j, err := a.Job(detail.JobID)
		return err == nil && j.Status == job.StatusComplete
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAnalysisHandler_Future(t *testing.T) {
	an := &mockAnalyzer{forecast: &core.AIFutureSignalResult{Signals: []core.FutureSignal{
		{Pair: "GBP/USD (OTC)", Time: "14:05", Direction: core.DirectionPut, Reason: "Resistance retest."},
	}}}
	handler := NewAnalysisHandler(newTestApp(t, an), 10<<20)

	body, ct := multipartBody(t, pngBytes, "GBP/USD (OTC)")
	req := httptest.NewRequest("POST", "/api/v1/analysis/future", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	handler.Future(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "GBP/USD (OTC)", data["pair"])
	assert.Len(t, data["signals"], 1)
	assert.NotContains(t, data, "message")
	assert.Equal(t, []string{"GBP/USD (OTC)"}, an.pairs)
}

func TestAnalysisHandler_Future_NoSignals(t *testing.T) {
	an := &mockAnalyzer{forecast: &core.AIFutureSignalResult{Signals: []core.FutureSignal{}}}
	handler := NewAnalysisHandler(newTestApp(t, an), 10<<20)

	payload := `{"pair": "EUR/USD (OTC)", "image_base64": "` + base64.StdEncoding.EncodeToString(pngBytes) + `"}`
	req := httptest.NewRequest("POST", "/api/v1/analysis/future", strings.NewReader(payload))
	w := httptest.NewRecorder()
	handler.Future(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, []any{}, data["signals"])
	assert.Equal(t, ui.MsgNoSignals, data["message"])
}

func TestAnalysisHandler_Future_Errors(t *testing.T) {
	an := &mockAnalyzer{err: errors.New("unused")}
	handler := NewAnalysisHandler(newTestApp(t, an), 10<<20)

	body, ct := multipartBody(t, pngBytes, "")
	req := httptest.NewRequest("POST", "/api/v1/analysis/future", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	handler.Future(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PAIR_REQUIRED", decodeError(t, w).Code)

	body, ct = multipartBody(t, nil, "")
	req = httptest.NewRequest("POST", "/api/v1/analysis/future", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	handler.Future(w, req)
	assert.Equal(t, "IMAGE_REQUIRED", decodeError(t, w).Code, "image is checked before pair")

	assert.Empty(t, an.pairs)
}
