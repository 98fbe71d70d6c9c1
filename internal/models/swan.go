package models

import "gorm.io/gorm"

// Device — a SWAN telemetry unit, keyed by IMEI. Config holds the
// last configuration the device reported, as a flat JSON object;
// overwritten wholesale on every report.
type Device struct {
	gorm.Model
	IMEI   string `gorm:"column:imei;uniqueIndex"`
	Config string `gorm:"type:text"`
}

// Session — one configuration-sync handshake for one device check-in.
type Session struct {
	gorm.Model
	SID    string `gorm:"column:sid;uniqueIndex"`
	IMEI   string `gorm:"column:imei;index"`
	Status string `gorm:"index"`
}

// PendingChange — an administrator-queued configuration delta awaiting
// delivery; at most one per device.
type PendingChange struct {
	gorm.Model
	IMEI   string `gorm:"column:imei;uniqueIndex"`
	Config string `gorm:"type:text"`
}

// Message — archived traffic: raw telemetry uploads, device reports
// and dispatched commands, kept for audit.
type Message struct {
	gorm.Model
	Kind      string `gorm:"index"`
	IMEI      string `gorm:"column:imei;index"`
	SessionID string `gorm:"index"`
	Body      string `gorm:"type:text"`
}
