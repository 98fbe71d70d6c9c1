package repo

import (
	"encoding/json"
	"errors"

	"swanctl/internal/dispatch"
	"swanctl/internal/models"
	"swanctl/internal/wire"

	"gorm.io/gorm"
)

// DeviceStore — gorm-backed dispatch.DeviceStore.
type DeviceStore struct {
	db *gorm.DB
}

func NewDeviceStore(db *gorm.DB) *DeviceStore {
	return &DeviceStore{db: db}
}

// SaveConfig overwrites the device's configuration wholesale, creating
// the device row on first report.
func (s *DeviceStore) SaveConfig(imei string, cfg *wire.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var m models.Device
	tx := s.db.Where(&models.Device{IMEI: imei}).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			m = models.Device{IMEI: imei, Config: string(raw)}
			return s.db.Create(&m).Error
		}
		return tx.Error
	}
	m.Config = string(raw)
	return s.db.Save(&m).Error
}

func (s *DeviceStore) Find(imei string) (dispatch.DeviceFields, bool, error) {
	var m models.Device
	if err := s.db.Where("imei = ?", imei).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dispatch.DeviceFields{}, false, nil
		}
		return dispatch.DeviceFields{}, false, err
	}
	d, err := deviceFields(m)
	return d, true, err
}

func (s *DeviceStore) List() ([]dispatch.DeviceFields, error) {
	var rows []models.Device
	if err := s.db.Order("imei").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]dispatch.DeviceFields, 0, len(rows))
	for _, m := range rows {
		d, err := deviceFields(m)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *DeviceStore) Delete(imei string) (bool, error) {
	tx := s.db.Where("imei = ?", imei).Delete(&models.Device{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func deviceFields(m models.Device) (dispatch.DeviceFields, error) {
	cfg, err := wire.ParseConfig([]byte(m.Config))
	if err != nil {
		return dispatch.DeviceFields{}, err
	}
	return dispatch.DeviceFields{IMEI: m.IMEI, Config: cfg, UpdatedAt: m.UpdatedAt}, nil
}
