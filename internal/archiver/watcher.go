package archiver

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"tvscribe/internal/config"
	"tvscribe/internal/fileutil"
	"tvscribe/internal/logging"
	"tvscribe/internal/objstore"
	"tvscribe/internal/queue"
)

const (
	scanInterval   = 100 * time.Millisecond
	settleInterval = 50 * time.Millisecond
	uploadWorkers  = 2
)

// Watcher turns completed raw segments into queued analysis tasks in
// strict per-channel order, and schedules best-effort replication of the
// raw file to object storage.
type Watcher struct {
	channel config.Channel
	cfg     *config.Config
	tasks   *queue.Bounded
	storage objstore.Client
	logger  *slog.Logger

	archiveDir string
	audioDir   string
	loc        *time.Location

	scanEvery   time.Duration
	settleEvery time.Duration

	// convert produces the analysis audio file from a raw segment;
	// replaced in tests.
	convert func(ctx context.Context, src, dst string) error

	uploadCtx context.Context
	uploadSem chan struct{}
	uploadWG  sync.WaitGroup

	mu        sync.Mutex
	processed map[string]struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
}

// NewWatcher constructs a watcher for one channel. uploadCtx bounds the
// lifetime of async replication; it should outlive schedule toggles and be
// cancelled only at daemon shutdown.
func NewWatcher(cfg *config.Config, channel config.Channel, tasks *queue.Bounded, storage objstore.Client, uploadCtx context.Context, logger *slog.Logger) *Watcher {
	if uploadCtx == nil {
		uploadCtx = context.Background()
	}
	w := &Watcher{
		channel:     channel,
		cfg:         cfg,
		tasks:       tasks,
		storage:     storage,
		logger:      logging.WithChannel(logging.NewComponentLogger(logger, "watcher"), channel.ID),
		archiveDir:  cfg.ArchiveDirFor(channel.ID),
		audioDir:    cfg.AudioDirFor(channel.ID),
		loc:         cfg.Location(),
		scanEvery:   scanInterval,
		settleEvery: settleInterval,
		uploadCtx:   uploadCtx,
		uploadSem:   make(chan struct{}, uploadWorkers),
	}
	w.convert = w.convertToAudio
	return w
}

// Start begins the scan loop. Idempotent. Leftover analysis files from a
// previous run are cleared and the processed set reset so every raw
// segment still on disk gets (re)considered.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.archiveDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(w.audioDir, 0o755); err != nil {
		return err
	}
	w.clearStaleAudio()

	w.processed = make(map[string]struct{})
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(w.stopCh, w.doneCh)
	return nil
}

// Stop halts the scan loop. In-flight uploads continue under uploadCtx.
// Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
	case <-time.After(time.Second):
	}
}

// Running reports whether the scan loop is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// WaitUploads blocks until scheduled replications finish; used at daemon
// shutdown and in tests.
func (w *Watcher) WaitUploads() {
	w.uploadWG.Wait()
}

func (w *Watcher) clearStaleAudio() {
	entries, err := os.ReadDir(w.audioDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".wav") {
			_ = os.Remove(filepath.Join(w.audioDir, entry.Name()))
		}
	}
}

func (w *Watcher) run(stopCh chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		if err := w.scanOnce(stopCh); err != nil {
			w.logger.Error("segment scan failed", logging.Error(err))
			if !sleepInterruptible(5*w.scanEvery, stopCh) {
				return
			}
			continue
		}

		if !sleepInterruptible(w.scanEvery, stopCh) {
			return
		}
	}
}

// scanOnce lists the archive directory in sorted order (lexicographic
// equals chronological for the timestamp naming) and processes every
// unprocessed segment, which keeps per-channel enqueue order strictly
// increasing.
func (w *Watcher) scanOnce(stopCh <-chan struct{}) error {
	entries, err := os.ReadDir(w.archiveDir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ts") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		select {
		case <-stopCh:
			return nil
		default:
		}
		if w.isProcessed(name) {
			continue
		}
		w.processSegment(name, stopCh)
	}
	return nil
}

func (w *Watcher) processSegment(name string, stopCh <-chan struct{}) {
	segPath := filepath.Join(w.archiveDir, name)

	if !w.waitComplete(segPath, stopCh) {
		return
	}

	audioName := strings.TrimSuffix(name, ".ts") + ".wav"
	audioPath := filepath.Join(w.audioDir, audioName)
	if err := w.convert(w.uploadCtx, segPath, audioPath); err != nil {
		// Left unprocessed so the next scan retries the segment.
		w.logger.Error("audio conversion failed", logging.String("segment", name), logging.Error(err))
		return
	}

	start, err := SegmentStartTime(name, w.loc)
	if err != nil {
		w.logger.Warn("unparseable segment timestamp, using wall clock", logging.String("segment", name))
		start = time.Now().UTC()
	}

	task := queue.Task{Channel: w.channel.ID, AudioPath: audioPath, Start: start}
	if !w.tasks.TryEnqueue(task) {
		// Drop the converted audio so a saturated queue cannot fill the
		// disk; the raw segment stays unprocessed and is retried.
		w.logger.Warn("queue full, segment dropped for retry", logging.String("segment", name))
		_ = os.Remove(audioPath)
		return
	}

	w.markProcessed(name)
	w.logger.Info("analysis task queued",
		logging.String("segment", name),
		logging.Int("queue_depth", w.tasks.Len()),
	)
	w.scheduleUpload(segPath, name)
}

// waitComplete blocks until two consecutive size reads report the same
// nonzero size, meaning the segmenter has moved on to the next file. A
// vanished file or shutdown aborts the wait.
func (w *Watcher) waitComplete(path string, stopCh <-chan struct{}) bool {
	prev := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return false
			}
			return false
		}
		size := info.Size()
		if size > 0 && size == prev {
			return true
		}
		prev = size
		if !sleepInterruptible(w.settleEvery, stopCh) {
			return false
		}
	}
}

func (w *Watcher) convertToAudio(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, w.cfg.Ingest.FFmpegBinary, //nolint:gosec
		"-hide_banner", "-loglevel", "warning",
		"-y", "-i", src,
		"-vn", "-ac", "1", "-ar", "16000",
		dst,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(dst)
		return errors.Join(err, errors.New(strings.TrimSpace(string(output))))
	}
	return nil
}

// scheduleUpload replicates the raw segment asynchronously. The key is
// always <channel>/<filename>, so retries of the same segment reuse the
// same key instead of duplicating it.
func (w *Watcher) scheduleUpload(segPath, name string) {
	if w.storage == nil {
		return
	}
	key := w.channel.ID + "/" + name

	w.uploadWG.Add(1)
	go func() {
		defer w.uploadWG.Done()
		select {
		case w.uploadSem <- struct{}{}:
			defer func() { <-w.uploadSem }()
		case <-w.uploadCtx.Done():
			return
		}

		if err := w.storage.Upload(w.uploadCtx, segPath, key); err != nil {
			// Local file stays; the age-based valve will reclaim it.
			w.logger.Error("segment replication failed", logging.String("key", key), logging.Error(err))
			return
		}
		w.logger.Debug("segment replicated", logging.String("key", key))

		if !w.cfg.Storage.DeleteLocalAfterUpload {
			return
		}
		time.Sleep(time.Duration(w.cfg.Storage.UploadGraceMS) * time.Millisecond)
		if fileutil.RemoveWithRetry(segPath, w.cfg.Storage.DeleteRetries, time.Duration(w.cfg.Storage.DeleteDelayMS)*time.Millisecond) {
			w.logger.Debug("local segment removed after upload", logging.String("segment", name))
		} else {
			w.logger.Warn("could not remove segment after upload", logging.String("segment", name))
		}
	}()
}

func (w *Watcher) isProcessed(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.processed[name]
	return ok
}

func (w *Watcher) markProcessed(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.processed[name] = struct{}{}
}
