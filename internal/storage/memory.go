package storage

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/model"
)

type Memory struct {
	mu      sync.RWMutex
	records map[string]model.GameRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]model.GameRecord)}
}

func (m *Memory) Save(_ context.Context, rec model.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *Memory) Load(_ context.Context, id string) (model.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return model.GameRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) List(_ context.Context) ([]model.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.GameRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b model.GameRecord) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
