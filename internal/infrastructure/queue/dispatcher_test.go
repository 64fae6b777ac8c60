package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/astroline/admin-gateway/internal/core/domain"
)

type memRecorder struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	done    chan struct{}
	want    int
}

func newMemRecorder(want int) *memRecorder {
	return &memRecorder{done: make(chan struct{}), want: want}
}

func (r *memRecorder) Record(_ context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	if len(r.entries) == r.want {
		close(r.done)
	}
	return nil
}

func (r *memRecorder) Recent(context.Context, int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEntry(nil), r.entries...), nil
}

func TestDispatcher_DeliversEntries(t *testing.T) {
	recorder := newMemRecorder(3)
	d := NewDispatcher(2, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, action := range []string{domain.AuditLogin, domain.AuditCreate, domain.AuditDelete} {
		d.Enqueue(domain.AuditEntry{Actor: "admin@example.com", Action: action, CreatedAt: time.Now().UTC()})
	}

	select {
	case <-recorder.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("entries not persisted in time")
	}
}

func TestDispatcher_PerActorOrdering(t *testing.T) {
	const n = 20
	recorder := newMemRecorder(n)
	// single worker per shard; same actor always lands on the same worker
	d := NewDispatcher(4, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < n; i++ {
		d.Enqueue(domain.AuditEntry{
			Actor:     "admin@example.com",
			Action:    domain.AuditUpdate,
			Detail:    string(rune('a' + i)),
			CreatedAt: time.Now().UTC(),
		})
	}

	select {
	case <-recorder.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("entries not persisted in time")
	}

	entries, _ := recorder.Recent(context.Background(), n)
	for i, e := range entries {
		if e.Detail != string(rune('a'+i)) {
			t.Fatalf("ordering broken at %d: got %q", i, e.Detail)
		}
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, newMemRecorder(1), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
