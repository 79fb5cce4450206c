package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/use-overseer/Orquesta/internal/domain/model"
)

// Memory is a map-backed Store for tests and single-run deployments.
type Memory struct {
	mu      sync.RWMutex
	weights model.WeightVector
	history []model.HistoryEntry
	loaded  bool
	tokens  map[string]TokenRecord
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tokens: make(map[string]TokenRecord)}
}

// Load returns the last saved snapshot, or empty state before any save.
func (m *Memory) Load(_ context.Context) (model.WeightVector, []model.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loaded {
		return model.WeightVector{}, nil, nil
	}
	history := make([]model.HistoryEntry, len(m.history))
	copy(history, m.history)
	return m.weights.Clone(), history, nil
}

// Save replaces the stored snapshot.
func (m *Memory) Save(_ context.Context, weights model.WeightVector, history []model.HistoryEntry) error {
	kept := make([]model.HistoryEntry, len(history))
	copy(kept, history)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.weights = weights.Clone()
	m.history = kept
	m.loaded = true
	return nil
}

// PutToken stores or replaces a token record.
func (m *Memory) PutToken(_ context.Context, rec TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[rec.ID] = rec
	return nil
}

// GetToken returns the record for id.
func (m *Memory) GetToken(_ context.Context, id string) (TokenRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.tokens[id]
	if !ok {
		return TokenRecord{}, ErrNotFound
	}
	return rec, nil
}

// ListTokens returns all token records, oldest first.
func (m *Memory) ListTokens(_ context.Context) ([]TokenRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TokenRecord, 0, len(m.tokens))
	for _, rec := range m.tokens {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out, nil
}

// DeleteToken removes the record for id.
func (m *Memory) DeleteToken(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	return nil
}
