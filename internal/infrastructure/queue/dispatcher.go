package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/astroline/admin-gateway/internal/api/metrics"
	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	recordTimeout  = 5 * time.Second
)

// Dispatcher persists audit entries asynchronously through a fixed set of
// workers, sharded by actor so one operator's trail is written in order.
// Audit is fire-and-forget: a full queue drops the entry with a log line
// rather than blocking the request path.
type Dispatcher struct {
	workers  []chan domain.AuditEntry
	recorder ports.AuditRecorder
	log      zerolog.Logger
}

var _ ports.AuditSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.AuditRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.AuditEntry, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an entry to the worker responsible for its actor.
func (d *Dispatcher) Enqueue(entry domain.AuditEntry) {
	i := d.shardIndex(entry.Actor)
	select {
	case d.workers[i] <- entry:
		metrics.AuditEntriesTotal.WithLabelValues(entry.Action).Inc()
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	default:
		d.log.Warn().Str("action", entry.Action).Str("actor", entry.Actor).Msg("audit queue full, entry dropped")
	}
}

// shardIndex maps an actor deterministically to a worker index.
func (d *Dispatcher) shardIndex(actor string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actor))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))

			recordCtx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			if err := d.recorder.Record(recordCtx, entry); err != nil {
				d.log.Error().Err(err).
					Str("action", entry.Action).
					Int("worker_id", id).
					Msg("audit entry not persisted")
			}
			cancel()
		}
	}
}
