package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chris/marketplace-escrow/pkg/metrics"
)

// Dispatcher delivers notices on a fixed pool of goroutines so that callers
// never wait on a sink. Notices are dropped when the queue is full.
type Dispatcher struct {
	sink    Notifier
	logger  *slog.Logger
	timeout time.Duration
	queue   chan Notice
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines draining a queue of size capacity.
func NewDispatcher(sink Notifier, workers, capacity int, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		sink:    sink,
		logger:  logger,
		timeout: timeout,
		queue:   make(chan Notice, capacity),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.run()
		}()
	}
	return d
}

var _ Notifier = (*Dispatcher)(nil)

func (d *Dispatcher) run() {
	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sink.Notify(ctx, n); err != nil {
			metrics.NotificationsFailed.WithLabelValues(string(n.Kind)).Inc()
			d.logger.Warn("failed to deliver notice", "kind", n.Kind, "transactionId", n.TransactionID, "error", err)
		}
		cancel()
	}
}

// Notify enqueues the notice without blocking. It never returns an error.
func (d *Dispatcher) Notify(_ context.Context, n Notice) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.NotificationsDropped.Inc()
		return nil
	}
	select {
	case d.queue <- n:
	default:
		metrics.NotificationsDropped.Inc()
		d.logger.Warn("notice queue full, dropping notice", "kind", n.Kind, "transactionId", n.TransactionID)
	}
	return nil
}

// Close stops accepting notices and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
