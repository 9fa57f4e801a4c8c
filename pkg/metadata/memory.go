package metadata

import (
	"context"
	"sync"
)

// Memory is an in-memory Store for tests. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an empty in-memory metadata store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) RecordExists(_ context.Context, identity string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[identity]
	return ok, nil
}

func (m *Memory) RecordCreate(_ context.Context, identity string, rec Record) error {
	m.mu.Lock()
	m.records[identity] = rec
	m.mu.Unlock()
	return nil
}

func (m *Memory) RecordGet(_ context.Context, identity string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[identity]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) RecordDelete(_ context.Context, identity string) error {
	m.mu.Lock()
	delete(m.records, identity)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	return nil
}
