package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"tvscribe/internal/archiver"
	"tvscribe/internal/config"
	"tvscribe/internal/dispatch"
	"tvscribe/internal/logging"
	"tvscribe/internal/objstore"
	"tvscribe/internal/queue"
	"tvscribe/internal/retention"
	"tvscribe/internal/schedule"
	"tvscribe/internal/store"
	"tvscribe/internal/transcribe"
)

// Daemon owns the full recording pipeline: one archiver per channel, the
// shared task queue, the dispatch loop, the schedule evaluator, and the
// retention sweeper. Construction wires everything; Run starts it and
// blocks until the context ends.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	lock       *flock.Flock
	store      *store.Store
	storage    objstore.Client
	tasks      *queue.Bounded
	stats      *dispatch.Stats
	dispatcher *dispatch.Dispatcher
	scheduler  *schedule.Scheduler
	sweeper    *retention.Sweeper

	uploadCancel context.CancelFunc

	mu        sync.Mutex
	archivers []*archiver.Archiver
}

// New assembles a daemon from configuration. Nothing is started yet; the
// single-instance lock is taken by Run.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	logger = logger.With(logging.String("session", uuid.NewString()))

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	storage, err := objstore.NewFromConfig(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("object storage: %w", err)
	}

	engine := transcribe.NewService(cfg.Transcriber)
	if err := engine.Probe(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("transcriber: %w", err)
	}

	d := &Daemon{
		cfg:     cfg,
		logger:  logger,
		lock:    flock.New(filepath.Join(cfg.Paths.DataDir, "tvscribed.lock")),
		store:   st,
		storage: storage,
		tasks:   queue.NewBounded(cfg.Pipeline.MaxQueueSize),
		stats:   &dispatch.Stats{},
	}

	pool := dispatch.NewPool(cfg, engine, st, d.stats, logger)
	admission := dispatch.NewAdmission(cfg.Pipeline, logger)
	d.dispatcher = dispatch.NewDispatcher(d.tasks, admission, pool, d.stats, logger)

	var uploadCtx context.Context
	uploadCtx, d.uploadCancel = context.WithCancel(context.Background())
	for _, channel := range cfg.Channels {
		d.archivers = append(d.archivers,
			archiver.New(cfg, channel, d.tasks, storage, uploadCtx, logger))
	}

	d.scheduler = schedule.New(st, d, cfg.Location(), logger)
	d.sweeper = retention.New(cfg, st, storage, cfg.Location(), logger)

	logger.Info("daemon assembled",
		logging.Int("channels", len(cfg.Channels)),
		logging.Int("queue_capacity", d.tasks.Cap()),
		logging.Int("workers", cfg.Pipeline.WorkerCount),
		logging.String("model", engine.Model()),
	)
	return d, nil
}

// Run takes the single-instance lock, starts every subsystem, and blocks
// until ctx is cancelled. Shutdown is orderly: ingestion stops first so
// no new work arrives, then the queue drains through the pool.
func (d *Daemon) Run(ctx context.Context) error {
	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another tvscribed instance holds %s", d.lock.Path())
	}
	defer func() {
		_ = d.lock.Unlock()
	}()

	d.dispatcher.Start(ctx)
	d.sweeper.Start()
	if err := d.scheduler.Start(ctx); err != nil {
		d.shutdown()
		return fmt.Errorf("scheduler: %w", err)
	}

	d.logger.Info("daemon running")
	<-ctx.Done()
	d.logger.Info("shutdown requested")
	d.shutdown()
	return nil
}

func (d *Daemon) shutdown() {
	d.scheduler.Stop()
	for _, a := range d.archivers {
		a.WaitUploads()
	}
	d.uploadCancel()
	d.sweeper.Stop()
	d.dispatcher.Stop()
	if err := d.store.Close(); err != nil {
		d.logger.Warn("store close failed", logging.Error(err))
	}
	snapshot := d.stats.Snapshot()
	d.logger.Info("daemon stopped",
		logging.Int64("processed", snapshot.Processed),
		logging.Int64("errors", snapshot.Errors),
		logging.Int64("dropped", snapshot.Dropped),
	)
}

// EnableAll resumes ingestion for every channel. Called by the scheduler
// when a recording window opens.
func (d *Daemon) EnableAll() {
	d.mu.Lock()
	archivers := d.archivers
	d.mu.Unlock()
	for _, a := range archivers {
		if err := a.Resume(); err != nil {
			d.logger.Error("resume channel failed",
				logging.String("channel", a.Channel.ID), logging.Error(err))
		}
	}
}

// DisableAll stops ingestion for every channel. Called by the scheduler
// when the window closes and during shutdown.
func (d *Daemon) DisableAll() {
	d.mu.Lock()
	archivers := d.archivers
	d.mu.Unlock()
	for _, a := range archivers {
		a.Stop()
	}
}

// Stats exposes throughput counters for status reporting.
func (d *Daemon) Stats() dispatch.Snapshot {
	return d.stats.Snapshot()
}

// QueueDepth reports the number of waiting analysis tasks.
func (d *Daemon) QueueDepth() int {
	return d.tasks.Len()
}
