package dispatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tvscribe/internal/config"
	"tvscribe/internal/fileutil"
	"tvscribe/internal/logging"
	"tvscribe/internal/queue"
	"tvscribe/internal/store"
	"tvscribe/internal/transcribe"
)

// Recorder is the slice of the store the pool writes through.
type Recorder interface {
	InsertTranscripts(ctx context.Context, records []store.TranscriptRecord) error
}

// Pool runs a fixed number of transcription workers. Tasks are handled
// at most once: failures are counted and the task abandoned, and the
// audio excerpt is removed whether or not the task succeeded.
type Pool struct {
	engine  transcribe.Engine
	records Recorder
	stats   *Stats
	logger  *slog.Logger

	deleteRetries int
	deleteDelay   time.Duration

	jobs chan queue.Task
	wg   sync.WaitGroup
}

// NewPool starts cfg.WorkerCount workers consuming submitted tasks.
func NewPool(cfg *config.Config, engine transcribe.Engine, records Recorder, stats *Stats, logger *slog.Logger) *Pool {
	workers := cfg.Pipeline.WorkerCount
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		engine:        engine,
		records:       records,
		stats:         stats,
		logger:        logging.NewComponentLogger(logger, "worker"),
		deleteRetries: cfg.Storage.DeleteRetries,
		deleteDelay:   time.Duration(cfg.Storage.DeleteDelayMS) * time.Millisecond,
		jobs:          make(chan queue.Task),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit hands a task to the next free worker, blocking until one
// accepts it or the context is cancelled.
func (p *Pool) Submit(ctx context.Context, task queue.Task) error {
	select {
	case p.jobs <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for in-flight work to drain.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.jobs {
		p.handle(task)
	}
}

func (p *Pool) handle(task queue.Task) {
	logger := logging.WithChannel(p.logger, task.Channel)
	defer func() {
		if !fileutil.RemoveWithRetry(task.AudioPath, p.deleteRetries, p.deleteDelay) {
			logger.Warn("audio excerpt not removed", logging.String("path", task.AudioPath))
		}
	}()

	started := time.Now()
	utterances, err := p.engine.Transcribe(context.Background(), task.AudioPath)
	if err != nil {
		p.stats.addError()
		logger.Error("transcription failed", logging.Error(err))
		return
	}

	records := buildRecords(task, utterances)
	if len(records) > 0 {
		if err := p.records.InsertTranscripts(context.Background(), records); err != nil {
			p.stats.addError()
			logger.Error("persist transcripts failed", logging.Error(err))
			return
		}
	}

	p.stats.addProcessed()
	logger.Info("segment transcribed",
		logging.Int("utterances", len(records)),
		logging.Duration("elapsed", time.Since(started)),
	)
}

// buildRecords converts relative utterance offsets into absolute wall
// clock spans anchored at the segment's start time.
func buildRecords(task queue.Task, utterances []transcribe.Utterance) []store.TranscriptRecord {
	segment := segmentNameFor(task.AudioPath)
	records := make([]store.TranscriptRecord, 0, len(utterances))
	for _, u := range utterances {
		records = append(records, store.TranscriptRecord{
			ChannelID:       task.Channel,
			StartTime:       task.Start.Add(secondsToDuration(u.Start)),
			EndTime:         task.Start.Add(secondsToDuration(u.End)),
			Text:            u.Text,
			SegmentFilename: segment,
			OffsetSecs:      u.Start,
			DurationSecs:    u.End - u.Start,
		})
	}
	return records
}

func segmentNameFor(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".ts"
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
