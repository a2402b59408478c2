package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/lrchart/chartai/internal/api/response"
	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/storage/batch"
)

// BatchesApp is the part of app.App the batch endpoints need.
type BatchesApp interface {
	Batches(ctx context.Context, filter batch.ListFilter) ([]core.Batch, int, error)
	Batch(ctx context.Context, id string) (*core.Batch, error)
	Report(ctx context.Context, id string) (string, error)
	Publish(ctx context.Context, id string, names []string) (map[string]error, error)
}

// PublishRequest names the notifiers to publish to. Empty means all.
type PublishRequest struct {
	Notifiers []string `json:"notifiers" validate:"dive,required"`
}

// BatchesHandler serves recently generated signal lists.
type BatchesHandler struct {
	app BatchesApp
}

// NewBatchesHandler creates a new batches handler.
func NewBatchesHandler(app BatchesApp) *BatchesHandler {
	return &BatchesHandler{app: app}
}

// List returns batches matching query parameters, newest first.
func (h *BatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := batch.ListFilter{
		Kind: core.BatchKind(q.Get("kind")),
		Pair: q.Get("pair"),
	}

	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filter.Limit = n
		}
	} else {
		filter.Limit = 50 // Default limit
	}

	if offset := q.Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			filter.Offset = n
		}
	}

	items, total, err := h.app.Batches(r.Context(), filter)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	if items == nil {
		items = []core.Batch{}
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"batches": items,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// Get returns a single batch.
func (h *BatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.app.Batch(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, b)
}

// Report returns the clipboard text of a batch as text/plain.
func (h *BatchesHandler) Report(w http.ResponseWriter, r *http.Request) {
	text, err := h.app.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.Text(w, http.StatusOK, text)
}

// Publish sends the batch report to notifiers. Delivery failures are listed
// per notifier; the request fails only when nothing could be attempted.
func (h *BatchesHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := decodeJSON(r, &req, true); err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	id := r.PathValue("id")
	errs, err := h.app.Publish(r.Context(), id, req.Notifiers)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	failed := make(map[string]string, len(errs))
	for name, err := range errs {
		failed[name] = err.Error()
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"batch_id":  id,
		"published": len(errs) == 0,
		"failed":    failed,
	})
}
