package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve routes through a mux so r.PathValue is populated.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestBatchesHandler_List(t *testing.T) {
	a := newTestApp(t, nil)
	ctx := context.Background()
	_, err := a.NextSignal(ctx, "EUR/USD (OTC)", "1 Min")
	require.NoError(t, err)
	_, err = a.FutureList(ctx)
	require.NoError(t, err)

	handler := NewBatchesHandler(a)

	w := serve("GET /api/v1/batches", handler.List, httptest.NewRequest("GET", "/api/v1/batches", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.EqualValues(t, 2, data["total"])
	assert.EqualValues(t, 50, data["limit"])
	items := data["batches"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "future_list", items[0].(map[string]any)["kind"])

	w = serve("GET /api/v1/batches", handler.List, httptest.NewRequest("GET", "/api/v1/batches?kind=next_minute&limit=5", nil))
	data = decodeData(t, w)
	assert.EqualValues(t, 1, data["total"])
	assert.EqualValues(t, 5, data["limit"])
}

func TestBatchesHandler_List_Empty(t *testing.T) {
	handler := NewBatchesHandler(newTestApp(t, nil))

	w := serve("GET /api/v1/batches", handler.List, httptest.NewRequest("GET", "/api/v1/batches", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decodeData(t, w)["batches"])
}

func TestBatchesHandler_GetAndReport(t *testing.T) {
	a := newTestApp(t, nil)
	b, err := a.FutureList(context.Background())
	require.NoError(t, err)
	handler := NewBatchesHandler(a)

	w := serve("GET /api/v1/batches/{id}", handler.Get, httptest.NewRequest("GET", "/api/v1/batches/"+b.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, b.ID, decodeData(t, w)["id"])

	w = serve("GET /api/v1/batches/{id}/report", handler.Report, httptest.NewRequest("GET", "/api/v1/batches/"+b.ID+"/report", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "LOSS RECOVERY ⦿ FUTURE BOT\nUTC; +5:00\nPAKISTAN TIME ZONE\nLIST ------\n"))
	assert.Equal(t, len(b.Signals), strings.Count(w.Body.String(), "1 MIN ➡ "))
}

func TestBatchesHandler_NotFound(t *testing.T) {
	handler := NewBatchesHandler(newTestApp(t, nil))

	w := serve("GET /api/v1/batches/{id}", handler.Get, httptest.NewRequest("GET", "/api/v1/batches/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)

	w = serve("GET /api/v1/batches/{id}/report", handler.Report, httptest.NewRequest("GET", "/api/v1/batches/nope/report", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBatchesHandler_Publish(t *testing.T) {
	tg := &mockNotifier{name: "telegram"}
	wh := &mockNotifier{name: "webhook", err: errors.New("connection refused")}
	a := newTestApp(t, nil, tg, wh)
	b, err := a.FutureList(context.Background())
	require.NoError(t, err)
	handler := NewBatchesHandler(a)

	req := httptest.NewRequest("POST", "/api/v1/batches/"+b.ID+"/publish", nil)
	w := serve("POST /api/v1/batches/{id}/publish", handler.Publish, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, false, data["published"])
	assert.Contains(t, data["failed"], "webhook")
	require.Len(t, tg.got, 1)
	assert.Equal(t, "Future Signals 1M", tg.got[0].Title)

	req = httptest.NewRequest("POST", "/api/v1/batches/"+b.ID+"/publish", strings.NewReader(`{"notifiers": ["telegram"]}`))
	w = serve("POST /api/v1/batches/{id}/publish", handler.Publish, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeData(t, w)["published"])
	assert.Len(t, tg.got, 2)
	assert.Len(t, wh.got, 1)
}

func TestBatchesHandler_Publish_NoNotifiers(t *testing.T) {
	a := newTestApp(t, nil)
	b, err := a.FutureList(context.Background())
	require.NoError(t, err)
	handler := NewBatchesHandler(a)

	w := serve("POST /api/v1/batches/{id}/publish", handler.Publish, httptest.NewRequest("POST", "/api/v1/batches/"+b.ID+"/publish", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
