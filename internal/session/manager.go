package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status of a configuration-sync session.
type Status string

const (
	StatusCreated        Status = "created"
	StatusAwaitingGetCfg Status = "awaiting_get_cfg_result"
	StatusPushingSetCfg  Status = "pushing_set_cfg"
	StatusCompleted      Status = "completed"
	StatusError          Status = "error"
)

var (
	ErrNotFound          = errors.New("session: not found")
	ErrIllegalTransition = errors.New("session: illegal transition")

	// ErrStale — the conditional status write lost against a
	// concurrent transition for the same session.
	ErrStale = errors.New("session: stale status")
)

// legal transition edges. Error is reachable from every non-terminal
// state; nothing leaves completed or error.
var legal = map[Status][]Status{
	StatusCreated:        {StatusAwaitingGetCfg, StatusError},
	StatusAwaitingGetCfg: {StatusPushingSetCfg, StatusCompleted, StatusError},
	StatusPushingSetCfg:  {StatusAwaitingGetCfg, StatusCompleted, StatusError},
}

// Record — persisted session state.
type Record struct {
	SID       string
	IMEI      string
	Status    Status
	UpdatedAt time.Time
}

func (r Record) Completed() bool { return r.Status == StatusCompleted }

// Store persists session records. UpdateStatus must be conditional on
// the current status so concurrent reports for the same session cannot
// double-transition it.
type Store interface {
	Create(rec Record) error
	Find(sid string) (Record, bool, error)
	UpdateStatus(sid string, from, to Status) error
	List() ([]Record, error)
}

// Manager owns the session lifecycle; nothing else writes session
// status.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager { return &Manager{store: store} }

// NewSID builds a session id scoped to the device: the IMEI plus a
// random suffix.
func NewSID(imei string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("session_%s_%s", imei, suffix)
}

// Create allocates a session for the device and immediately advances
// it to awaiting_get_cfg_result: the server always asks for the
// current configuration first.
func (m *Manager) Create(imei string) (Record, error) {
	rec := Record{SID: NewSID(imei), IMEI: imei, Status: StatusCreated}
	if err := m.store.Create(rec); err != nil {
		return Record{}, err
	}
	if err := m.store.UpdateStatus(rec.SID, StatusCreated, StatusAwaitingGetCfg); err != nil {
		return Record{}, err
	}
	rec.Status = StatusAwaitingGetCfg
	return rec, nil
}

func (m *Manager) Find(sid string) (Record, bool, error) {
	return m.store.Find(sid)
}

func (m *Manager) List() ([]Record, error) {
	return m.store.List()
}

// Advance transitions the session to the given status, rejecting edges
// outside the transition table.
func (m *Manager) Advance(sid string, to Status) error {
	rec, ok, err := m.store.Find(sid)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if !allowed(rec.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, rec.Status, to)
	}
	return m.store.UpdateStatus(sid, rec.Status, to)
}

// MarkError puts the session into its terminal error state.
func (m *Manager) MarkError(sid string) error {
	return m.Advance(sid, StatusError)
}

func allowed(from, to Status) bool {
	for _, s := range legal[from] {
		if s == to {
			return true
		}
	}
	return false
}
