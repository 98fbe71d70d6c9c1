package dispatch

import (
	"sync"
	"time"

	"swanctl/internal/wire"
)

// ─────────────────────────── in-memory stores (fallback) ───────────────────────────

type memDeviceStore struct {
	byIMEI map[string]DeviceFields
	mu     sync.RWMutex
}

func NewMemDeviceStore() DeviceStore {
	return &memDeviceStore{byIMEI: make(map[string]DeviceFields)}
}

func (m *memDeviceStore) SaveConfig(imei string, cfg *wire.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byIMEI[imei] = DeviceFields{IMEI: imei, Config: cfg, UpdatedAt: time.Now()}
	return nil
}

func (m *memDeviceStore) Find(imei string) (DeviceFields, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.byIMEI[imei]
	return d, ok, nil
}

func (m *memDeviceStore) List() ([]DeviceFields, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]DeviceFields, 0, len(m.byIMEI))
	for _, d := range m.byIMEI {
		out = append(out, d)
	}
	return out, nil
}

func (m *memDeviceStore) Delete(imei string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byIMEI[imei]; !ok {
		return false, nil
	}
	delete(m.byIMEI, imei)
	return true, nil
}

type memPendingStore struct {
	byIMEI map[string]PendingFields
	mu     sync.Mutex
}

func NewMemPendingStore() PendingStore {
	return &memPendingStore{byIMEI: make(map[string]PendingFields)}
}

func (m *memPendingStore) Put(imei string, cfg *wire.Config) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, existed := m.byIMEI[imei]
	m.byIMEI[imei] = PendingFields{IMEI: imei, Config: cfg, UpdatedAt: time.Now()}
	return !existed, nil
}

func (m *memPendingStore) Peek(imei string) (PendingFields, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byIMEI[imei]
	return p, ok, nil
}

// Take claims and removes the change under one lock: a second
// concurrent Take for the same device gets nothing.
func (m *memPendingStore) Take(imei string) (*wire.Config, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byIMEI[imei]
	if !ok {
		return nil, false, nil
	}
	delete(m.byIMEI, imei)
	return p.Config, true, nil
}

func (m *memPendingStore) Delete(imei string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byIMEI[imei]; !ok {
		return false, nil
	}
	delete(m.byIMEI, imei)
	return true, nil
}

type memMessageStore struct {
	entries []MessageFields
	mu      sync.RWMutex
}

func NewMemMessageStore() MessageStore {
	return &memMessageStore{}
}

func (m *memMessageStore) Append(e MessageFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memMessageStore) List() ([]MessageFields, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MessageFields, len(m.entries))
	copy(out, m.entries)
	return out, nil
}
