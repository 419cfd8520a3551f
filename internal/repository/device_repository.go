package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alert-relay/internal/model"
)

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, device *model.Device) error {
	return r.db.WithContext(ctx).Create(device).Error
}

func (r *DeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	var device model.Device
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&device).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

func (r *DeviceRepository) GetByHash(ctx context.Context, deviceIDHash string) (*model.Device, error) {
	var device model.Device
	err := r.db.WithContext(ctx).
		Where("device_id_hash = ?", deviceIDHash).
		First(&device).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

func (r *DeviceRepository) Update(ctx context.Context, device *model.Device) error {
	return r.db.WithContext(ctx).Save(device).Error
}

// Delete removes the device; vehicles, alerts and push tokens cascade away
// at the database level.
func (r *DeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Device{}).Error
}

// DeleteInactiveSince removes devices not seen since the cutoff and returns
// how many rows went away.
func (r *DeviceRepository) DeleteInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_seen_at < ?", cutoff).
		Delete(&model.Device{})
	return result.RowsAffected, result.Error
}
