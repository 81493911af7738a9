package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps blobs in process memory.
type MemoryBackend struct {
	mu        sync.Mutex
	values    map[string][]byte
	sequences map[string]int64
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values:    make(map[string][]byte),
		sequences: make(map[string]int64),
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *MemoryBackend) NextID(_ context.Context, name string, floor int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.sequences[name]
	if cur < floor {
		cur = floor
	}
	cur++
	m.sequences[name] = cur
	return cur, nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
