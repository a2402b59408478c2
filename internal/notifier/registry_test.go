package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lrchart/chartai/internal/core"
)

type mockNotifier struct {
	name       string
	mu         sync.Mutex
	published  []Message
	shouldFail bool
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Init(cfg Config) error { return nil }

func (m *mockNotifier) Publish(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, msg)
	if m.shouldFail {
		return errors.New("publish failed")
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	mock := &mockNotifier{name: "test"}
	err := r.Register(mock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Duplicate registration should fail
	err = r.Register(mock)
	if err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	mock := &mockNotifier{name: "test"}
	r.Register(mock)

	n, err := r.Get("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Name() != "test" {
		t.Errorf("expected 'test', got '%s'", n.Name())
	}

	_, err = r.Get("nonexistent")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_GetAllSorted(t *testing.T) {
	r := NewRegistry()

	r.Register(&mockNotifier{name: "webhook"})
	r.Register(&mockNotifier{name: "email"})
	r.Register(&mockNotifier{name: "telegram"})

	all := r.GetAll()
	if len(all) != 3 || r.Len() != 3 {
		t.Fatalf("expected 3 notifiers, got %d", len(all))
	}
	if all[0].Name() != "email" || all[1].Name() != "telegram" || all[2].Name() != "webhook" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].Name(), all[1].Name(), all[2].Name())
	}
	if names := r.Names(); len(names) != 3 || names[0] != "email" || names[2] != "webhook" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestRegistry_PublishAll(t *testing.T) {
	r := NewRegistry()

	ok := &mockNotifier{name: "ok"}
	bad := &mockNotifier{name: "bad", shouldFail: true}
	r.Register(ok)
	r.Register(bad)

	msg := Message{Title: "Future list", Text: "LIST ------"}
	errs := r.PublishAll(context.Background(), msg)

	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if !errors.Is(errs["bad"], core.ErrNotifierFailed) {
		t.Errorf("expected ErrNotifierFailed, got %v", errs["bad"])
	}
	if len(ok.published) != 1 || ok.published[0].Text != "LIST ------" {
		t.Errorf("ok notifier did not receive message: %+v", ok.published)
	}
}

func TestRegistry_PublishTo(t *testing.T) {
	r := NewRegistry()

	a := &mockNotifier{name: "a"}
	b := &mockNotifier{name: "b"}
	r.Register(a)
	r.Register(b)

	errs := r.PublishTo(context.Background(), []string{"a", "missing"}, Message{Text: "x"})

	if len(a.published) != 1 || len(b.published) != 0 {
		t.Errorf("unexpected deliveries a=%d b=%d", len(a.published), len(b.published))
	}
	if !errors.Is(errs["missing"], core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing, got %v", errs["missing"])
	}
}

func TestFromBatch(t *testing.T) {
	b := core.Batch{ID: "b1", Kind: core.BatchAIForecast, Pair: "Gold (OTC)"}
	msg := FromBatch(b, "AI Future Signals", "report")
	if msg.BatchID != "b1" || msg.Kind != core.BatchAIForecast || msg.Pair != "Gold (OTC)" || msg.Text != "report" {
		t.Errorf("unexpected message %+v", msg)
	}
}
