package archiver

import (
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"tvscribe/internal/logging"
	"tvscribe/internal/testsupport"
)

func newTestSupervisor(t *testing.T, spawn func() (*segmentProcess, error)) *Supervisor {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	s := NewSupervisor(cfg, cfg.Channels[0], logging.NewNop())
	s.backoffInitial = 10 * time.Millisecond
	s.backoffMax = 40 * time.Millisecond
	s.pollInterval = 10 * time.Millisecond
	if spawn != nil {
		s.spawn = spawn
	}
	t.Cleanup(s.Stop)
	return s
}

func spawnSleep(d string) (*segmentProcess, error) {
	return startProcess(exec.Command("sleep", d), nil)
}

func TestSupervisorRestartsAfterExit(t *testing.T) {
	var spawns atomic.Int32
	s := newTestSupervisor(t, func() (*segmentProcess, error) {
		spawns.Add(1)
		// Dies almost immediately so the monitor has to respawn it.
		return spawnSleep("0.01")
	})

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for spawns.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected respawns, got %d spawns", spawns.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSupervisorRestartsWhenKilled(t *testing.T) {
	var spawns atomic.Int32
	s := newTestSupervisor(t, func() (*segmentProcess, error) {
		spawns.Add(1)
		return spawnSleep("60")
	})

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.mu.Lock()
	proc := s.proc
	s.mu.Unlock()
	if err := proc.cmd.Process.Kill(); err != nil {
		t.Fatalf("kill: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for spawns.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("monitor never restarted the killed segmenter")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSupervisorStartIdempotent(t *testing.T) {
	var spawns atomic.Int32
	s := newTestSupervisor(t, func() (*segmentProcess, error) {
		spawns.Add(1)
		return spawnSleep("60")
	})

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if got := spawns.Load(); got != 1 {
		t.Fatalf("expected a single spawn, got %d", got)
	}
	if !s.Running() {
		t.Fatal("supervisor should be running")
	}
}

func TestSupervisorStopTerminatesProcess(t *testing.T) {
	s := newTestSupervisor(t, func() (*segmentProcess, error) {
		return spawnSleep("60")
	})

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	s.mu.Lock()
	proc := s.proc
	s.mu.Unlock()

	s.Stop()
	s.Stop()

	if s.Running() {
		t.Fatal("supervisor should report stopped")
	}
	select {
	case <-proc.done:
	case <-time.After(5 * time.Second):
		t.Fatal("segmenter process still alive after stop")
	}
}
