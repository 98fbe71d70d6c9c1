package repo

import (
	"errors"

	"swanctl/internal/models"
	"swanctl/internal/session"

	"gorm.io/gorm"
)

// SessionStore — gorm-backed session.Store.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(rec session.Record) error {
	m := models.Session{SID: rec.SID, IMEI: rec.IMEI, Status: string(rec.Status)}
	return s.db.Create(&m).Error
}

func (s *SessionStore) Find(sid string) (session.Record, bool, error) {
	var m models.Session
	if err := s.db.Where("sid = ?", sid).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return session.Record{}, false, nil
		}
		return session.Record{}, false, err
	}
	return record(m), true, nil
}

// UpdateStatus writes the transition conditionally on the current
// status; a zero-row update means either a missing session or a
// concurrent transition that got there first.
func (s *SessionStore) UpdateStatus(sid string, from, to session.Status) error {
	tx := s.db.Model(&models.Session{}).
		Where("sid = ? AND status = ?", sid, string(from)).
		Update("status", string(to))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		var n int64
		if err := s.db.Model(&models.Session{}).Where("sid = ?", sid).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return session.ErrNotFound
		}
		return session.ErrStale
	}
	return nil
}

func (s *SessionStore) List() ([]session.Record, error) {
	var rows []models.Session
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]session.Record, 0, len(rows))
	for _, m := range rows {
		out = append(out, record(m))
	}
	return out, nil
}

func record(m models.Session) session.Record {
	return session.Record{
		SID:       m.SID,
		IMEI:      m.IMEI,
		Status:    session.Status(m.Status),
		UpdatedAt: m.UpdatedAt,
	}
}
