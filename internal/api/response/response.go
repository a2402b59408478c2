package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lrchart/chartai/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
	JobID   string `json:"job_id,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Text writes a plain UTF-8 body.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	write(w, status, detail(err))
}

// Timeout writes a 504 carrying the id of the job that is still running.
func Timeout(w http.ResponseWriter, message, jobID string) {
	d := detail(core.ErrAnalysisTimeout)
	d.Message = message
	d.JobID = jobID
	write(w, http.StatusGatewayTimeout, d)
}

// StatusFor maps a domain error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrPairNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrBadRequest), errors.Is(err, core.ErrPairRequired),
		errors.Is(err, core.ErrUnknownTimeframe), errors.Is(err, core.ErrImageRequired):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrAnalysisTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrAnalysisFailed), errors.Is(err, core.ErrLLMFailed),
		errors.Is(err, core.ErrNotifierFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func detail(err error) ErrorDetail {
	d := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		d.Code = coreErr.Code
		d.Message = coreErr.Message
		if coreErr.Cause != nil {
			d.Cause = coreErr.Cause.Error()
		}
	}
	return d
}

func write(w http.ResponseWriter, status int, d ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: d})
}
