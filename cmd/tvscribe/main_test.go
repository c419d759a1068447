package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[[channels]]
id = "itv"
url = "https://example.com/itv.m3u8"
media_type = "video"

[paths]
archive_dir = %q
audio_dir = %q
log_dir = %q
data_dir = %q

[pipeline]
device = "cpu"
`,
		filepath.Join(base, "archive"),
		filepath.Join(base, "audio"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "data"),
	)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIntervalsLifecycle(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", configPath, "intervals", "add", "22:00", "06:00")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "22:00:00 - 06:00:00") {
		t.Fatalf("unexpected add output %q", out)
	}

	out, err = runCommand(t, "--config", configPath, "intervals", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "22:00:00") || !strings.Contains(out, "wraps midnight") {
		t.Fatalf("list should show the wrapping window, got:\n%s", out)
	}

	out, err = runCommand(t, "--config", configPath, "intervals", "update", "1", "09:00", "17:00")
	if err != nil {
		t.Fatalf("update: %v\n%s", err, out)
	}

	out, err = runCommand(t, "--config", configPath, "intervals", "remove", "1")
	if err != nil {
		t.Fatalf("remove: %v\n%s", err, out)
	}

	out, err = runCommand(t, "--config", configPath, "intervals", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No recording windows") {
		t.Fatalf("expected empty schedule notice, got:\n%s", out)
	}
}

func TestIntervalsRejectsBadClockTime(t *testing.T) {
	configPath := writeTestConfig(t)
	if _, err := runCommand(t, "--config", configPath, "intervals", "add", "25:00", "06:00"); err == nil {
		t.Fatal("expected an error for an out-of-range hour")
	}
}

func TestIntervalsRemoveUnknownID(t *testing.T) {
	configPath := writeTestConfig(t)
	if _, err := runCommand(t, "--config", configPath, "intervals", "remove", "42"); err == nil {
		t.Fatal("expected an error removing a missing window")
	}
}

func TestSearchEmptyCatalog(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCommand(t, "--config", configPath, "search", "weather")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "No matches.") {
		t.Fatalf("expected empty result notice, got:\n%s", out)
	}
}

func TestStatsOnFreshDatabase(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCommand(t, "--config", configPath, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Live transcripts") {
		t.Fatalf("unexpected stats output:\n%s", out)
	}
}

func TestConfigShowPrintsResolvedFile(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCommand(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, configPath) || !strings.Contains(out, "[[channels]]") {
		t.Fatalf("unexpected config show output:\n%s", out)
	}
}
