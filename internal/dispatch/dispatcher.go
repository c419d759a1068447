package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"tvscribe/internal/logging"
	"tvscribe/internal/queue"
)

// Dispatcher is the single loop draining the bounded queue. It blocks on
// the queue, holds each task at the admission gate, and hands it to the
// worker pool before pulling the next one.
type Dispatcher struct {
	tasks     *queue.Bounded
	admission *Admission
	pool      *Pool
	stats     *Stats
	logger    *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewDispatcher wires the loop to its queue, gate, and pool.
func NewDispatcher(tasks *queue.Bounded, admission *Admission, pool *Pool, stats *Stats, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		tasks:     tasks,
		admission: admission,
		pool:      pool,
		stats:     stats,
		logger:    logging.NewComponentLogger(logger, "dispatcher"),
	}
}

// Start launches the dispatch loop. Idempotent.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running = true
	go d.loop(loopCtx)
}

// Stop cancels the loop, waits for it to exit, and drains the pool.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	cancel()
	<-done
	d.pool.Close()
}

// QueueDepth reports how many tasks are waiting behind the loop.
func (d *Dispatcher) QueueDepth() int {
	return d.tasks.Len()
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer close(d.done)
	for {
		task, err := d.tasks.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				d.logger.Error("dequeue failed", logging.Error(err))
			}
			return
		}
		d.stats.setQueueDepth(d.tasks.Len())

		if err := d.admission.Wait(ctx); err != nil {
			// Shutdown raced the gate; the task is dropped, matching the
			// at-most-once contract.
			d.stats.AddDropped()
			return
		}
		if err := d.pool.Submit(ctx, task); err != nil {
			d.stats.AddDropped()
			return
		}
	}
}
