package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRemoveWithRetryMissingFileIsSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.ts")
	if !RemoveWithRetry(path, 3, time.Millisecond) {
		t.Fatal("missing file should count as removed")
	}
}

func TestRemoveWithRetryDeletesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg.ts")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !RemoveWithRetry(path, 3, time.Millisecond) {
		t.Fatal("expected removal to succeed")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file should be gone")
	}
}

func TestRemoveOlderThan(t *testing.T) {
	dir := t.TempDir()

	oldPath := filepath.Join(dir, "old.ts")
	newPath := filepath.Join(dir, "new.ts")
	skipped := filepath.Join(dir, "old.wav")
	for _, p := range []string{oldPath, newPath, skipped} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-2 * time.Hour)
	for _, p := range []string{oldPath, skipped} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := RemoveOlderThan(dir, time.Hour, func(name string) bool {
		return strings.HasSuffix(name, ".ts")
	})
	if err != nil {
		t.Fatalf("RemoveOlderThan: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatal("fresh file should survive")
	}
	if _, err := os.Stat(skipped); err != nil {
		t.Fatal("non-matching file should survive")
	}
}

func TestRemoveOlderThanMissingDir(t *testing.T) {
	removed, err := RemoveOlderThan(filepath.Join(t.TempDir(), "nope"), time.Hour, nil)
	if err != nil || removed != 0 {
		t.Fatalf("missing dir should be a no-op, got %d %v", removed, err)
	}
}
