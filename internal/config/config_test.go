package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvscribe/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[[channels]]
id = "itv"
url = "https://example.com/itv.m3u8"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be detected")
	}
	if cfg.Ingest.SegmentSeconds != 8 {
		t.Fatalf("expected default segment seconds, got %d", cfg.Ingest.SegmentSeconds)
	}
	if cfg.Pipeline.MaxQueueSize != 16 || cfg.Pipeline.WorkerCount != 2 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.Channels[0].MediaType != "video" {
		t.Fatalf("expected media type default, got %q", cfg.Channels[0].MediaType)
	}
	if cfg.Transcriber.Language != "az" {
		t.Fatalf("expected default transcriber language, got %q", cfg.Transcriber.Language)
	}
	if cfg.Retention.LocalMaxAgeMinutes != 120 || cfg.Retention.AudioMaxAgeMinutes != 3 {
		t.Fatalf("unexpected retention valve defaults: %+v", cfg.Retention)
	}
	if !filepath.IsAbs(cfg.Paths.ArchiveDir) {
		t.Fatalf("expected expanded archive dir, got %q", cfg.Paths.ArchiveDir)
	}
}

func TestLoadRejectsMissingChannels(t *testing.T) {
	_, _, _, err := config.Load(writeConfig(t, "[ingest]\nsegment_seconds = 8\n"))
	if err == nil || !strings.Contains(err.Error(), "channels") {
		t.Fatalf("expected channel validation error, got %v", err)
	}
}

func TestLoadRejectsDuplicateChannelIDs(t *testing.T) {
	body := minimalConfig + `
[[channels]]
id = "itv"
url = "https://example.com/other.m3u8"
`
	_, _, _, err := config.Load(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "duplicate channel") {
		t.Fatalf("expected duplicate channel error, got %v", err)
	}
}

func TestLoadRejectsBadDevice(t *testing.T) {
	body := minimalConfig + `
[pipeline]
device = "tpu"
`
	_, _, _, err := config.Load(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "device") {
		t.Fatalf("expected device validation error, got %v", err)
	}
}

func TestLoadRejectsStorageWithoutBucket(t *testing.T) {
	body := minimalConfig + `
[storage]
enabled = true
access_key_id = "key"
secret_access_key = "secret"
`
	_, _, _, err := config.Load(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "bucket") {
		t.Fatalf("expected bucket validation error, got %v", err)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	body := minimalConfig + `
[ingest]
timezone = "Mars/Olympus"
`
	_, _, _, err := config.Load(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "timezone") {
		t.Fatalf("expected timezone validation error, got %v", err)
	}
}

func TestSampleConfigParses(t *testing.T) {
	cfg, _, _, err := config.Load(writeConfig(t, config.SampleConfig()))
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if len(cfg.Channels) == 0 {
		t.Fatal("sample config should declare a channel")
	}
}
