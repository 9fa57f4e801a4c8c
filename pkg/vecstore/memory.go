package vecstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory Store using brute-force cosine ranking.
// Intended for tests and small deployments. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Upsert(_ context.Context, identity string, vector []float32) error {
	cp := make([]float32, len(vector))
	copy(cp, vector)
	m.mu.Lock()
	m.records[identity] = Record{Identity: identity, Vector: cp, UpdatedAt: time.Now().UTC()}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, identity string) ([]float32, error) {
	m.mu.RLock()
	rec, ok := m.records[identity]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]float32, len(rec.Vector))
	copy(cp, rec.Vector)
	return cp, nil
}

func (m *Memory) Delete(_ context.Context, identity string) error {
	m.mu.Lock()
	delete(m.records, identity)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Search(_ context.Context, query []float32, topK int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 || topK <= 0 {
		return nil, nil
	}

	matches := make([]Match, 0, len(m.records))
	for id, rec := range m.records {
		matches = append(matches, Match{Identity: id, Distance: CosineDistance(query, rec.Vector)})
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

func (m *Memory) Close() error {
	return nil
}
