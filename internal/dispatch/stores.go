package dispatch

import (
	"time"

	"swanctl/internal/wire"
)

// DeviceFields — DTO the dispatcher and admin surface work with.
type DeviceFields struct {
	IMEI      string       `json:"imei"`
	Config    *wire.Config `json:"config"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// PendingFields — a queued configuration change for one device.
type PendingFields struct {
	IMEI      string       `json:"imei"`
	Config    *wire.Config `json:"config"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// MessageFields — one archived message-log entry.
type MessageFields struct {
	Kind      string    `json:"kind"`
	IMEI      string    `json:"imei,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// DeviceStore — contract for the device-configuration collection.
// SaveConfig overwrites the whole config and creates the device if it
// does not exist yet.
type DeviceStore interface {
	SaveConfig(imei string, cfg *wire.Config) error
	Find(imei string) (DeviceFields, bool, error)
	List() ([]DeviceFields, error)
	Delete(imei string) (bool, error)
}

// PendingStore — contract for the per-device pending-change queue.
// Take claims and deletes the change as one atomic operation: at most
// one caller ever gets a given change.
type PendingStore interface {
	Put(imei string, cfg *wire.Config) (created bool, err error)
	Peek(imei string) (PendingFields, bool, error)
	Take(imei string) (*wire.Config, bool, error)
	Delete(imei string) (bool, error)
}

// MessageStore — contract for the audit message log.
type MessageStore interface {
	Append(m MessageFields) error
	List() ([]MessageFields, error)
}
