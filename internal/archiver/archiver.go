package archiver

import (
	"context"
	"log/slog"

	"tvscribe/internal/config"
	"tvscribe/internal/objstore"
	"tvscribe/internal/queue"
)

// Archiver pairs one channel's segmenter supervisor with its segment
// watcher. The interval scheduler resumes and stops the pair together;
// the archiver never decides on its own when to run.
type Archiver struct {
	Channel    config.Channel
	supervisor *Supervisor
	watcher    *Watcher
}

// New constructs the supervisor/watcher pair for a channel. The queue and
// storage client are shared references owned by the daemon root.
func New(cfg *config.Config, channel config.Channel, tasks *queue.Bounded, storage objstore.Client, uploadCtx context.Context, logger *slog.Logger) *Archiver {
	return &Archiver{
		Channel:    channel,
		supervisor: NewSupervisor(cfg, channel, logger),
		watcher:    NewWatcher(cfg, channel, tasks, storage, uploadCtx, logger),
	}
}

// Resume starts the segmenter and the watcher. Idempotent.
func (a *Archiver) Resume() error {
	if err := a.supervisor.Start(); err != nil {
		return err
	}
	return a.watcher.Start()
}

// Stop halts the watcher first so no new tasks are produced while the
// segmenter is being torn down. Idempotent.
func (a *Archiver) Stop() {
	a.watcher.Stop()
	a.supervisor.Stop()
}

// Active reports whether the pair is currently running.
func (a *Archiver) Active() bool {
	return a.supervisor.Running() || a.watcher.Running()
}

// WaitUploads blocks until the watcher's in-flight replications finish.
func (a *Archiver) WaitUploads() {
	a.watcher.WaitUploads()
}
