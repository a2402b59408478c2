package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/lrchart/chartai/internal/core"
)

type rateLimited struct {
	next    Analyzer
	limiter *rate.Limiter
}

// WithRateLimit spaces calls to a at most perMinute per minute. Waiting
// honours ctx. A non-positive perMinute disables limiting.
func WithRateLimit(a Analyzer, perMinute int) Analyzer {
	if perMinute <= 0 {
		return a
	}
	every := time.Minute / time.Duration(perMinute)
	return &rateLimited{next: a, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

func (r *rateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return core.WrapError(core.ErrAnalysisFailed, fmt.Errorf("waiting for rate limit: %w", err))
	}
	return nil
}

func (r *rateLimited) AnalyzeChart(ctx context.Context, image []byte, mimeType string) (*core.AnalysisResult, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.next.AnalyzeChart(ctx, image, mimeType)
}

func (r *rateLimited) AnalyzeForFutureSignals(ctx context.Context, image []byte, mimeType, pair string) (*core.AIFutureSignalResult, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.next.AnalyzeForFutureSignals(ctx, image, mimeType, pair)
}

type cached struct {
	next  Analyzer
	cache *gocache.Cache
}

// WithCache remembers successful results for ttl, keyed by the image bytes
// and request parameters. A non-positive ttl disables caching.
func WithCache(a Analyzer, ttl time.Duration) Analyzer {
	if ttl <= 0 {
		return a
	}
	return &cached{next: a, cache: gocache.New(ttl, 2*ttl)}
}

func cacheKey(kind, pair, mimeType string, image []byte) string {
	sum := sha256.Sum256(image)
	return kind + "|" + pair + "|" + mimeType + "|" + hex.EncodeToString(sum[:])
}

func (c *cached) AnalyzeChart(ctx context.Context, image []byte, mimeType string) (*core.AnalysisResult, error) {
	key := cacheKey(KindChart, "", mimeType, image)
	if v, ok := c.cache.Get(key); ok {
		res := *v.(*core.AnalysisResult)
		return &res, nil
	}
	res, err := c.next.AnalyzeChart(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}
	stored := *res
	c.cache.SetDefault(key, &stored)
	return res, nil
}

func (c *cached) AnalyzeForFutureSignals(ctx context.Context, image []byte, mimeType, pair string) (*core.AIFutureSignalResult, error) {
	key := cacheKey(KindForecast, pair, mimeType, image)
	if v, ok := c.cache.Get(key); ok {
		return &core.AIFutureSignalResult{Signals: slices.Clone(v.(*core.AIFutureSignalResult).Signals)}, nil
	}
	res, err := c.next.AnalyzeForFutureSignals(ctx, image, mimeType, pair)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, &core.AIFutureSignalResult{Signals: slices.Clone(res.Signals)})
	return res, nil
}

// Recorder receives per-call outcomes.
type Recorder interface {
	RecordAnalysis(kind, status string, seconds float64)
}

type instrumented struct {
	next Analyzer
	rec  Recorder
}

// WithMetrics reports the outcome and duration of every call to rec.
func WithMetrics(a Analyzer, rec Recorder) Analyzer {
	return &instrumented{next: a, rec: rec}
}

// Status classifies an analysis error for metrics and logs.
func Status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, core.ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, core.ErrImageRequired), errors.Is(err, core.ErrUnsupportedImage), errors.Is(err, core.ErrPairRequired):
		return "rejected"
	default:
		return "error"
	}
}

func (m *instrumented) AnalyzeChart(ctx context.Context, image []byte, mimeType string) (*core.AnalysisResult, error) {
	start := time.Now()
	res, err := m.next.AnalyzeChart(ctx, image, mimeType)
	m.rec.RecordAnalysis(KindChart, Status(err), time.Since(start).Seconds())
	return res, err
}

func (m *instrumented) AnalyzeForFutureSignals(ctx context.Context, image []byte, mimeType, pair string) (*core.AIFutureSignalResult, error) {
	start := time.Now()
	res, err := m.next.AnalyzeForFutureSignals(ctx, image, mimeType, pair)
	m.rec.RecordAnalysis(KindForecast, Status(err), time.Since(start).Seconds())
	return res, err
}
