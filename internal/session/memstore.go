package session

import (
	"fmt"
	"sync"
	"time"
)

// memStore — in-memory Store, used when no database is configured and
// as the test double.
type memStore struct {
	bySID map[string]Record
	mu    sync.RWMutex
}

func NewMemStore() Store {
	return &memStore{bySID: make(map[string]Record)}
}

func (m *memStore) Create(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bySID[rec.SID]; ok {
		return fmt.Errorf("session %s already exists", rec.SID)
	}
	rec.UpdatedAt = time.Now()
	m.bySID[rec.SID] = rec
	return nil
}

func (m *memStore) Find(sid string) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.bySID[sid]
	return rec, ok, nil
}

func (m *memStore) UpdateStatus(sid string, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.bySID[sid]
	if !ok {
		return ErrNotFound
	}
	if rec.Status != from {
		return ErrStale
	}
	rec.Status = to
	rec.UpdatedAt = time.Now()
	m.bySID[sid] = rec
	return nil
}

func (m *memStore) List() ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.bySID))
	for _, rec := range m.bySID {
		out = append(out, rec)
	}
	return out, nil
}
