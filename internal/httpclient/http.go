// Package httpclient is a small JSON HTTP client used by the outbound
// integrations (Ollama, Telegram, webhooks).
package httpclient

import (
	"context"
	"net/http"
)

type BaseResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// IsSuccess reports a 2xx status.
func (r *BaseResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type HTTPClient interface {
	Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result any) (*BaseResponse, error)
	Post(ctx context.Context, endpoint string, body any, headers map[string]string, result any) (*BaseResponse, error)
}
