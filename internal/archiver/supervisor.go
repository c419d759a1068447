package archiver

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"tvscribe/internal/config"
	"tvscribe/internal/logging"
)

const (
	initialBackoff  = 2 * time.Second
	maxBackoff      = 30 * time.Second
	aliveInterval   = 3 * time.Second
	monitorJoinWait = time.Second
	terminateWait   = 2 * time.Second
)

// segmentProcess tracks one spawned segmenter and its exit state.
type segmentProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	code int
}

func (p *segmentProcess) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Supervisor keeps a channel's stream segmenter alive. The external
// process slices the live stream into fixed-duration, timestamp-named raw
// segments; the monitor goroutine respawns it with doubling backoff when
// it dies.
type Supervisor struct {
	channel config.Channel
	cfg     *config.Config
	dir     string
	logger  *slog.Logger

	// Timing knobs, overridable in tests.
	backoffInitial time.Duration
	backoffMax     time.Duration
	pollInterval   time.Duration

	spawn func() (*segmentProcess, error)

	mu      sync.Mutex
	proc    *segmentProcess
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewSupervisor constructs a supervisor for one channel.
func NewSupervisor(cfg *config.Config, channel config.Channel, logger *slog.Logger) *Supervisor {
	s := &Supervisor{
		channel:        channel,
		cfg:            cfg,
		dir:            cfg.ArchiveDirFor(channel.ID),
		logger:         logging.WithChannel(logging.NewComponentLogger(logger, "supervisor"), channel.ID),
		backoffInitial: initialBackoff,
		backoffMax:     maxBackoff,
		pollInterval:   aliveInterval,
	}
	s.spawn = s.spawnSegmenter
	return s
}

// Start launches the segmenter and its monitor. It is idempotent: a second
// call while running is a no-op.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	if s.proc == nil || s.proc.exited() {
		proc, err := s.spawn()
		if err != nil {
			return err
		}
		s.proc = proc
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true
	go s.monitor(s.stopCh, s.doneCh)
	return nil
}

// Stop shuts the monitor down and terminates the segmenter, escalating to
// a kill if it ignores the termination request. Idempotent.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
	case <-time.After(monitorJoinWait):
	}

	s.mu.Lock()
	proc := s.proc
	s.proc = nil
	s.mu.Unlock()

	if proc == nil || proc.exited() {
		return
	}
	s.logger.Info("stopping segmenter", logging.Int("pid", proc.cmd.Process.Pid))
	_ = proc.cmd.Process.Signal(os.Interrupt)
	select {
	case <-proc.done:
	case <-time.After(terminateWait):
		_ = proc.cmd.Process.Kill()
		select {
		case <-proc.done:
		case <-time.After(terminateWait):
		}
	}
}

// Running reports whether the monitor is active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// monitor respawns the segmenter on exit, doubling the backoff up to a cap
// and resetting it once the process stays alive through a poll.
func (s *Supervisor) monitor(stopCh chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	backoff := s.backoffInitial
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		s.mu.Lock()
		proc := s.proc
		s.mu.Unlock()

		if proc == nil || proc.exited() {
			code := -1
			if proc != nil {
				code = proc.code
			}
			s.logger.Warn("segmenter exited, restarting",
				logging.Int("exit_code", code),
				logging.Duration("backoff", backoff),
			)
			if !sleepInterruptible(backoff, stopCh) {
				return
			}
			if backoff < s.backoffMax {
				backoff *= 2
				if backoff > s.backoffMax {
					backoff = s.backoffMax
				}
			}
			next, err := s.spawn()
			if err != nil {
				s.logger.Error("respawn segmenter failed", logging.Error(err))
				continue
			}
			s.mu.Lock()
			s.proc = next
			s.mu.Unlock()
		} else {
			backoff = s.backoffInitial
			if !sleepInterruptible(s.pollInterval, stopCh) {
				return
			}
		}
	}
}

func (s *Supervisor) spawnSegmenter() (*segmentProcess, error) {
	pattern := filepath.Join(s.dir, s.channel.ID+"_%Y%m%dT%H%M%S.ts")

	args := []string{
		"-hide_banner", "-loglevel", s.cfg.Ingest.FFmpegLogLevel,
		"-nostats",
		"-reconnect", "1", "-reconnect_streamed", "1", "-reconnect_delay_max", "10",
		"-rw_timeout", "15000000",
	}
	args = append(args, headerArgs(s.channel.Headers)...)
	args = append(args,
		"-y", "-i", s.channel.URL,
		"-c", "copy",
		"-f", "segment",
		"-segment_time", strconv.Itoa(s.cfg.Ingest.SegmentSeconds),
		"-reset_timestamps", "1",
		"-strftime", "1",
		pattern,
	)

	cmd := exec.Command(s.cfg.Ingest.FFmpegBinary, args...) //nolint:gosec
	cmd.Stdout = nil
	if logFile, err := os.OpenFile(
		filepath.Join(s.cfg.Paths.LogDir, "ffmpeg_"+s.channel.ID+".log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664,
	); err == nil {
		cmd.Stderr = logFile
	}

	return startProcess(cmd, func() {
		if closer, ok := cmd.Stderr.(*os.File); ok {
			_ = closer.Close()
		}
	})
}

// startProcess starts cmd and reaps it in a goroutine so exit state is
// observable without blocking the monitor.
func startProcess(cmd *exec.Cmd, cleanup func()) (*segmentProcess, error) {
	if err := cmd.Start(); err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, err
	}
	proc := &segmentProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		defer close(proc.done)
		_ = cmd.Wait()
		if cmd.ProcessState != nil {
			proc.code = cmd.ProcessState.ExitCode()
		}
		if cleanup != nil {
			cleanup()
		}
	}()
	return proc, nil
}

// sleepInterruptible sleeps for d unless stopCh closes first; it reports
// whether the full sleep completed.
func sleepInterruptible(d time.Duration, stopCh <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-stopCh:
		return false
	}
}
