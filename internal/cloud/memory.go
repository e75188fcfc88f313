package cloud

import (
	"context"
	"sync"
)

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailWith, when set, is returned by every call.
	FailWith error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Upload implements BlobStore.
func (m *MemoryStore) Upload(ctx context.Context, key string, data []byte, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.objects[key]; ok && !overwrite {
		return ErrExists
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

// Download implements BlobStore.
func (m *MemoryStore) Download(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}
