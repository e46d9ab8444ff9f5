// Package storage persists the counter list in a durable local key-value store.
//
// A KV holds opaque text values under string keys. The Adapter serializes the
// whole counter list to JSON and keeps it under a single key, the same shape a
// browser's localStorage entry would have.
package storage

import (
	"fmt"
	"sync"
)

// KV is a minimal durable key-value store. Set must be atomic from the
// caller's point of view: after it returns either the new value or the old
// one is stored, never a partial write.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// Backend names a KV implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Open returns the KV for backend, rooted at path. The memory backend ignores path.
func Open(backend Backend, path string) (KV, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLite(path)
	case BackendFile:
		return NewFileKV(path), nil
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// MemoryKV keeps values in a map. It is used for --storage memory and in tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Close() error { return nil }
