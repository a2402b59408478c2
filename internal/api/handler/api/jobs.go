package api

import (
	"net/http"

	"github.com/lrchart/chartai/internal/api/job"
	"github.com/lrchart/chartai/internal/api/response"
)

// JobsApp is the part of app.App the job endpoint needs.
type JobsApp interface {
	Job(id string) (*job.Job, error)
}

// JobsHandler serves analysis job status.
type JobsHandler struct {
	app JobsApp
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(app JobsApp) *JobsHandler {
	return &JobsHandler{app: app}
}

// Get returns a job and, once it has finished, its result or error.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.app.Job(r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, j)
}
