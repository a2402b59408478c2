// Package job keeps AI requests that outlive the caller's wait, so their
// outcome can be fetched later.
package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lrchart/chartai/internal/core"
)

// Status represents job status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Done reports whether the job has finished.
func (s Status) Done() bool { return s == StatusComplete || s == StatusFailed }

// Failure is the serialisable form of a job error.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Job represents an async job.
type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Pair      string    `json:"pair,omitempty"`
	Status    Status    `json:"status"`
	Result    any       `json:"result,omitempty"`
	Error     *Failure  `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Outcome is delivered once a job function returns.
type Outcome struct {
	Result any
	Err    error
}

// Observer is told how many jobs of a type are running whenever that
// number changes.
type Observer func(jobType string, active int)

// Store manages async jobs.
type Store struct {
	jobs     map[string]*Job
	order    []string // insertion order for eviction
	maxSize  int
	ttl      time.Duration
	active   map[string]int
	observer Observer
	now      func() time.Time
	mu       sync.RWMutex
}

// NewStore creates a job store holding at most maxSize jobs, each kept for
// ttl after its last update.
func NewStore(maxSize int, ttl time.Duration) *Store {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Store{
		jobs:    make(map[string]*Job),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		active:  make(map[string]int),
		now:     time.Now,
	}
}

// SetObserver registers fn for active-count changes.
func (s *Store) SetObserver(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// Create creates a new job and returns a copy of it.
func (s *Store) Create(jobType, pair string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	now := s.now()
	job := &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Pair:      pair,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Evict oldest if at capacity
	for len(s.jobs) >= s.maxSize && len(s.order) > 0 {
		oldest := s.order[0]
		delete(s.jobs, oldest)
		s.order = s.order[1:]
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	c := *job
	return &c
}

// Get retrieves a job by ID.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok || s.expired(job) {
		return nil, core.ErrNotFound
	}

	c := *job
	return &c, nil
}

// List returns all live jobs, oldest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Job, 0, len(s.jobs))
	for _, id := range s.order {
		if job, ok := s.jobs[id]; ok && !s.expired(job) {
			result = append(result, *job)
		}
	}
	return result
}

// Go runs fn as a new job in its own goroutine. The job is detached from
// ctx cancellation and bounded by timeout instead, so it keeps running
// after the caller stops waiting. The returned channel receives exactly one
// Outcome and is never closed.
func (s *Store) Go(ctx context.Context, jobType, pair string, timeout time.Duration, fn func(context.Context) (any, error)) (*Job, <-chan Outcome) {
	job := s.Create(jobType, pair)
	out := make(chan Outcome, 1)

	runCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc = func() {}
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
	}

	s.started(job.ID, jobType)
	go func() {
		defer cancel()
		result, err := fn(runCtx)
		s.finished(job.ID, jobType, result, err)
		out <- Outcome{Result: result, Err: err}
	}()

	return job, out
}

func (s *Store) started(id, jobType string) {
	s.mu.Lock()
	if job, ok := s.jobs[id]; ok {
		job.Status = StatusRunning
		job.UpdatedAt = s.now()
	}
	s.active[jobType]++
	n, obs := s.active[jobType], s.observer
	s.mu.Unlock()

	if obs != nil {
		obs(jobType, n)
	}
}

func (s *Store) finished(id, jobType string, result any, err error) {
	s.mu.Lock()
	if job, ok := s.jobs[id]; ok {
		if err != nil {
			job.Status = StatusFailed
			job.Error = failure(err)
		} else {
			job.Status = StatusComplete
			job.Result = result
		}
		job.UpdatedAt = s.now()
	}
	s.active[jobType]--
	n, obs := s.active[jobType], s.observer
	s.mu.Unlock()

	if obs != nil {
		obs(jobType, n)
	}
}

func failure(err error) *Failure {
	var ce *core.Error
	if errors.As(err, &ce) {
		return &Failure{Code: ce.Code, Message: ce.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Code: core.ErrAnalysisTimeout.Code, Message: core.ErrAnalysisTimeout.Message}
	}
	return &Failure{Code: "INTERNAL", Message: err.Error()}
}

func (s *Store) expired(job *Job) bool {
	return s.ttl > 0 && job.Status.Done() && s.now().Sub(job.UpdatedAt) > s.ttl
}

func (s *Store) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if job, ok := s.jobs[id]; ok && s.expired(job) {
			delete(s.jobs, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

// Wait blocks until out delivers, d elapses or ctx is done. The boolean is
// false when the caller stopped waiting; the job itself is unaffected.
func Wait(ctx context.Context, out <-chan Outcome, d time.Duration) (Outcome, bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case o := <-out:
		return o, true
	case <-timer.C:
		return Outcome{}, false
	case <-ctx.Done():
		return Outcome{}, false
	}
}
