package persistence

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotBackend stores the whole-state snapshot as one opaque record.
// Save must replace the previous record atomically: a failed Save leaves the
// old record readable.
type SnapshotBackend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Ping(ctx context.Context) error
}

// MemoryBackend keeps the snapshot in process memory. Used by tests and
// local runs without durable storage.
type MemoryBackend struct {
	mu      sync.Mutex
	payload []byte
	saves   int
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte{}, m.payload...), nil
}

func (m *MemoryBackend) Save(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = append([]byte{}, payload...)
	m.saves++
	return nil
}

func (m *MemoryBackend) Ping(ctx context.Context) error {
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
