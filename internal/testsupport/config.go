package testsupport

import (
	"path/filepath"
	"testing"

	"tvscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to a single cpu-device channel so nothing shells out to real
// tooling unless a test opts in.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfg.Paths.AudioDir = filepath.Join(base, "audio")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Channels = []config.Channel{{ID: "itv", URL: "https://example.com/itv.m3u8", MediaType: "video"}}
	cfg.Pipeline.Device = "cpu"
	cfg.Pipeline.MinFreeMemoryMB = 0
	cfg.Storage.UploadGraceMS = 0
	cfg.Storage.DeleteDelayMS = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithChannels replaces the default channel list.
func WithChannels(channels ...config.Channel) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Channels = channels
	}
}

// WithQueueSize overrides the bounded queue capacity.
func WithQueueSize(size int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.MaxQueueSize = size
	}
}

// WithWorkers overrides the worker pool size.
func WithWorkers(count int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.WorkerCount = count
	}
}
