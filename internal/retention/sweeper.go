package retention

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tvscribe/internal/config"
	"tvscribe/internal/fileutil"
	"tvscribe/internal/logging"
	"tvscribe/internal/objstore"
	"tvscribe/internal/store"
)

// Catalog is the slice of the store the sweeper reads and updates.
type Catalog interface {
	TranscriptsOlderThan(ctx context.Context, cutoff time.Time) ([]store.TranscriptRecord, error)
	MarkTranscriptsDeleted(ctx context.Context, ids []int64) error
}

// Sweeper enforces the retention policy. A daily sweep removes expired
// segments locally and remotely and flips the catalog's deleted flag; a
// faster local valve trims aged files from disk regardless of catalog
// state so a stuck sweep cannot fill the volume.
type Sweeper struct {
	cfg     *config.Config
	catalog Catalog
	storage objstore.Client
	loc     *time.Location
	logger  *slog.Logger

	now func() time.Time

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// New creates a sweeper. The storage client may be nil when replication
// is disabled; the sweep then only touches local files.
func New(cfg *config.Config, catalog Catalog, storage objstore.Client, loc *time.Location, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cfg:     cfg,
		catalog: catalog,
		storage: storage,
		loc:     loc,
		logger:  logging.NewComponentLogger(logger, "retention"),
		now:     time.Now,
	}
}

// Start runs an immediate valve pass and launches the sweep loop.
// Idempotent.
func (s *Sweeper) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.valveOnce()
	go s.loop(s.stopCh, s.doneCh)
}

// Stop halts the loop. Idempotent.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()
	<-doneCh
}

func (s *Sweeper) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	var valveCh <-chan time.Time
	if interval := s.valveInterval(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		valveCh = ticker.C
	}

	for {
		sweepTimer := time.NewTimer(time.Until(s.nextSweep()))
		select {
		case <-stopCh:
			sweepTimer.Stop()
			return
		case <-valveCh:
			sweepTimer.Stop()
			s.valveOnce()
		case <-sweepTimer.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			if marked, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("retention sweep failed", logging.Error(err))
			} else {
				s.logger.Info("retention sweep complete", logging.Int("marked", marked))
			}
			cancel()
		}
	}
}

// nextSweep returns the next occurrence of the configured sweep clock
// time in the schedule's location.
func (s *Sweeper) nextSweep() time.Time {
	now := s.now().In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(),
		s.cfg.Retention.SweepHour, s.cfg.Retention.SweepMinute, 0, 0, s.loc)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// SweepOnce removes segments older than the retention horizon and marks
// their catalog records deleted. A record is marked only when both the
// local file and the remote object are confirmed gone; a missing file
// counts as gone.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-time.Duration(s.cfg.Retention.Days) * 24 * time.Hour)
	records, err := s.catalog.TranscriptsOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	type target struct {
		channel string
		segment string
	}
	cleared := make(map[target]bool)
	var ids []int64
	for _, record := range records {
		tgt := target{record.ChannelID, record.SegmentFilename}
		gone, seen := cleared[tgt]
		if !seen {
			gone = s.clearSegment(ctx, tgt.channel, tgt.segment)
			cleared[tgt] = gone
		}
		if gone {
			ids = append(ids, record.ID)
		}
	}

	if err := s.catalog.MarkTranscriptsDeleted(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// clearSegment deletes the local file and the remote object for one
// segment. Both deletes treat absence as success.
func (s *Sweeper) clearSegment(ctx context.Context, channel, segment string) bool {
	localPath := filepath.Join(s.cfg.ArchiveDirFor(channel), segment)
	if err := os.Remove(localPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("local delete failed", logging.String("path", localPath), logging.Error(err))
		return false
	}

	if s.storage != nil {
		key := channel + "/" + segment
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("remote delete failed", logging.String("key", key), logging.Error(err))
			return false
		}
	}
	return true
}

func (s *Sweeper) valveInterval() time.Duration {
	return time.Duration(s.cfg.Retention.ValveIntervalMinutes) * time.Minute
}

// valveOnce trims aged files from every channel's archive and audio
// directories. Raw segments use the local age cap; analysis WAVs are
// transient scratch files and get a much shorter one. It works purely
// from file modification times so it stays effective when the catalog
// is behind.
func (s *Sweeper) valveOnce() {
	segmentAge := time.Duration(s.cfg.Retention.LocalMaxAgeMinutes) * time.Minute
	audioAge := time.Duration(s.cfg.Retention.AudioMaxAgeMinutes) * time.Minute

	total := 0
	for _, channel := range s.cfg.Channels {
		if segmentAge > 0 {
			n, err := fileutil.RemoveOlderThan(s.cfg.ArchiveDirFor(channel.ID), segmentAge, func(name string) bool {
				return strings.HasSuffix(name, ".ts")
			})
			if err != nil {
				s.logger.Warn("valve pass on archive dir failed",
					logging.String("channel", channel.ID), logging.Error(err))
			}
			total += n
		}

		if audioAge > 0 {
			n, err := fileutil.RemoveOlderThan(s.cfg.AudioDirFor(channel.ID), audioAge, func(name string) bool {
				return strings.HasSuffix(name, ".wav")
			})
			if err != nil {
				s.logger.Warn("valve pass on audio dir failed",
					logging.String("channel", channel.ID), logging.Error(err))
			}
			total += n
		}
	}
	if total > 0 {
		s.logger.Info("local valve removed aged files", logging.Int("removed", total))
	}
}
