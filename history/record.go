package history

import (
	"context"
	"sync"
)

// Record is a durable key/value slot holding one JSON document per logical key.
type Record interface {
	// Load returns the stored value and whether it exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryRecord is a process-local Record, used when no durable backend is
// configured and in tests.
type MemoryRecord struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryRecord creates an empty MemoryRecord.
func NewMemoryRecord() *MemoryRecord {
	return &MemoryRecord{values: make(map[string][]byte)}
}

func (m *MemoryRecord) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryRecord) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryRecord) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
