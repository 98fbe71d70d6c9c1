package repo

import (
	"encoding/json"
	"errors"

	"swanctl/internal/dispatch"
	"swanctl/internal/models"
	"swanctl/internal/wire"

	"gorm.io/gorm"
)

// PendingStore — gorm-backed dispatch.PendingStore.
type PendingStore struct {
	db *gorm.DB
}

func NewPendingStore(db *gorm.DB) *PendingStore {
	return &PendingStore{db: db}
}

func (s *PendingStore) Put(imei string, cfg *wire.Config) (bool, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return false, err
	}
	var m models.PendingChange
	tx := s.db.Where(&models.PendingChange{IMEI: imei}).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			m = models.PendingChange{IMEI: imei, Config: string(raw)}
			return true, s.db.Create(&m).Error
		}
		return false, tx.Error
	}
	m.Config = string(raw)
	return false, s.db.Save(&m).Error
}

func (s *PendingStore) Peek(imei string) (dispatch.PendingFields, bool, error) {
	var m models.PendingChange
	if err := s.db.Where("imei = ?", imei).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dispatch.PendingFields{}, false, nil
		}
		return dispatch.PendingFields{}, false, err
	}
	cfg, err := wire.ParseConfig([]byte(m.Config))
	if err != nil {
		return dispatch.PendingFields{}, false, err
	}
	return dispatch.PendingFields{IMEI: m.IMEI, Config: cfg, UpdatedAt: m.UpdatedAt}, true, nil
}

// Take claims the change in one transaction: the row-guarded delete
// makes sure only a single caller ever walks away with it.
func (s *PendingStore) Take(imei string) (*wire.Config, bool, error) {
	var cfg *wire.Config
	claimed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var m models.PendingChange
		if err := tx.Where("imei = ?", imei).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		del := tx.Where("id = ?", m.ID).Delete(&models.PendingChange{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			// lost to a concurrent take
			return nil
		}
		c, err := wire.ParseConfig([]byte(m.Config))
		if err != nil {
			return err
		}
		cfg = c
		claimed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return cfg, claimed, nil
}

func (s *PendingStore) Delete(imei string) (bool, error) {
	tx := s.db.Where("imei = ?", imei).Delete(&models.PendingChange{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
