package objstore

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Memory is an in-process Client used by tests and local development. It
// mirrors S3 semantics: deleting a missing key succeeds, Exists never
// errors.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailUploads forces Upload errors to exercise best-effort paths.
	FailUploads bool
}

// NewMemory creates an empty in-memory object store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Upload(_ context.Context, localPath, key string) error {
	if m.FailUploads {
		return fmt.Errorf("upload %s: forced failure", key)
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) Presign(_ context.Context, key string) (string, error) {
	return "memory://" + key, nil
}

// Keys returns the stored keys, for test assertions.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	return keys
}
