package repo

import (
	"swanctl/internal/dispatch"
	"swanctl/internal/models"

	"gorm.io/gorm"
)

// MessageStore — gorm-backed dispatch.MessageStore.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) Append(e dispatch.MessageFields) error {
	m := models.Message{
		Kind:      e.Kind,
		IMEI:      e.IMEI,
		SessionID: e.SessionID,
		Body:      e.Body,
	}
	return s.db.Create(&m).Error
}

func (s *MessageStore) List() ([]dispatch.MessageFields, error) {
	var rows []models.Message
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]dispatch.MessageFields, 0, len(rows))
	for _, m := range rows {
		out = append(out, dispatch.MessageFields{
			Kind:      m.Kind,
			IMEI:      m.IMEI,
			SessionID: m.SessionID,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
