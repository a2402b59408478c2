package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lrchart/chartai/internal/api/response"
	"github.com/lrchart/chartai/internal/app"
	"github.com/lrchart/chartai/internal/catalog"
	"github.com/lrchart/chartai/internal/config"
	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/notifier"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type mockAnalyzer struct {
	chart    *core.AnalysisResult
	forecast *core.AIFutureSignalResult
	err      error
	release  chan struct{}
	pairs    []string
}

func (m *mockAnalyzer) wait(ctx context.Context) error {
	if m.release == nil {
		return nil
	}
	select {
	case <-m.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockAnalyzer) AnalyzeChart(ctx context.Context, image []byte, mimeType string) (*core.AnalysisResult, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.chart, m.err
}

func (m *mockAnalyzer) AnalyzeForFutureSignals(ctx context.Context, image []byte, mimeType, pair string) (*core.AIFutureSignalResult, error) {
	m.pairs = append(m.pairs, pair)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.forecast, m.err
}

type mockNotifier struct {
	name string
	err  error
	got  []notifier.Message
}

func (m *mockNotifier) Name() string                   { return m.name }
func (m *mockNotifier) Init(cfg notifier.Config) error { return nil }
func (m *mockNotifier) Publish(ctx context.Context, msg notifier.Message) error {
	m.got = append(m.got, msg)
	return m.err
}

func newTestApp(t *testing.T, an *mockAnalyzer, notifiers ...notifier.Notifier) *app.App {
	t.Helper()

	cfg := config.Defaults()
	cfg.Analysis.UITimeout = 100 * time.Millisecond

	cat, err := catalog.New([]string{"EUR/USD (OTC)", "GBP/USD (OTC)", "USD/JPY (OTC)", "AUD/CAD (OTC)", "EUR/GBP (OTC)", "NZD/USD (OTC)"})
	require.NoError(t, err)

	reg := notifier.NewRegistry()
	for _, n := range notifiers {
		require.NoError(t, reg.Register(n))
	}

	deps := app.Deps{Catalog: cat, Notifiers: reg}
	if an != nil {
		deps.Analyzer = an
	}
	a, err := app.New(cfg, deps, nil)
	require.NoError(t, err)
	return a
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp response.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is not an object: %s", w.Body.String())
	return data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorDetail {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}
