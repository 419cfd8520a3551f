package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alert-relay/internal/model"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *AlertRepository) Update(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

func (r *AlertRepository) GetForVehicles(ctx context.Context, id uuid.UUID, vehicleIDs []uuid.UUID) (*model.Alert, error) {
	if len(vehicleIDs) == 0 {
		return nil, nil
	}
	var alert model.Alert
	err := r.db.WithContext(ctx).
		Where("id = ? AND vehicle_id IN ?", id, vehicleIDs).
		First(&alert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// ListForVehicles returns non-expired alerts for the given vehicles, newest
// first. limit+1 rows are requested so the caller can detect a next page.
func (r *AlertRepository) ListForVehicles(ctx context.Context, vehicleIDs []uuid.UUID, limit, offset int) ([]model.Alert, int64, error) {
	if len(vehicleIDs) == 0 {
		return nil, 0, nil
	}

	now := time.Now().UTC()

	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("vehicle_id IN ? AND expires_at > ?", vehicleIDs, now).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var alerts []model.Alert
	err = r.db.WithContext(ctx).
		Where("vehicle_id IN ? AND expires_at > ?", vehicleIDs, now).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit + 1).
		Find(&alerts).Error
	if err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

// DeleteExpired removes alerts past their retention window.
func (r *AlertRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&model.Alert{})
	return result.RowsAffected, result.Error
}
