package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// RemoveWithRetry deletes path, retrying transient lock errors (EACCES,
// EBUSY) with a fixed delay. A missing file counts as success. It reports
// whether the file is gone.
func RemoveWithRetry(path string, retries int, delay time.Duration) bool {
	if retries < 1 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		err := os.Remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return true
		}
		if !isTransient(err) {
			return false
		}
		time.Sleep(delay)
	}
	return false
}

func isTransient(err error) bool {
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EACCES || errno == syscall.EBUSY
	}
	return false
}

// RemoveOlderThan deletes regular files directly under dir whose
// modification time is older than maxAge and whose name passes the match
// predicate (nil matches everything). It returns the number of files
// removed and the first error encountered; removal continues past errors.
func RemoveOlderThan(dir string, maxAge time.Duration, match func(name string) bool) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if match != nil && !match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			if firstErr == nil && !errors.Is(err, fs.ErrNotExist) {
				firstErr = err
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}
