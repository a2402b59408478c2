package notifier

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lrchart/chartai/internal/core"
)

// Registry manages notifier instances
type Registry struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
}

// NewRegistry creates a new notifier registry
func NewRegistry() *Registry {
	return &Registry{
		notifiers: make(map[string]Notifier),
	}
}

// Register adds a notifier to the registry
func (r *Registry) Register(n Notifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := n.Name()
	if _, exists := r.notifiers[name]; exists {
		return fmt.Errorf("notifier %s already registered", name)
	}

	r.notifiers[name] = n
	return nil
}

// Get retrieves a notifier by name
func (r *Registry) Get(name string) (Notifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notifiers[name]
	if !exists {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("notifier %s", name))
	}
	return n, nil
}

// GetAll returns all registered notifiers sorted by name
func (r *Registry) GetAll() []Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Notifier, 0, len(r.notifiers))
	for _, n := range r.notifiers {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Names returns the registered notifier names, sorted.
func (r *Registry) Names() []string {
	all := r.GetAll()
	names := make([]string, len(all))
	for i, n := range all {
		names[i] = n.Name()
	}
	return names
}

// Len returns the number of registered notifiers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notifiers)
}

// PublishAll sends msg to every registered notifier. The result holds an
// ErrNotifierFailed for each notifier that failed.
func (r *Registry) PublishAll(ctx context.Context, msg Message) map[string]error {
	notifiers := r.GetAll()

	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make(map[string]error)
	for _, n := range notifiers {
		wg.Add(1)
		go func(n Notifier) {
			defer wg.Done()
			if err := n.Publish(ctx, msg); err != nil {
				mu.Lock()
				errs[n.Name()] = core.WrapError(core.ErrNotifierFailed, err)
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	return errs
}

// PublishTo sends msg to the named notifiers only.
func (r *Registry) PublishTo(ctx context.Context, names []string, msg Message) map[string]error {
	errs := make(map[string]error)
	for _, name := range names {
		n, err := r.Get(name)
		if err != nil {
			errs[name] = err
			continue
		}
		if err := n.Publish(ctx, msg); err != nil {
			errs[name] = core.WrapError(core.ErrNotifierFailed, err)
		}
	}
	return errs
}
