package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alert-relay/internal/model"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) GetByHash(ctx context.Context, vehicleIDHash string) (*model.Vehicle, error) {
	if vehicleIDHash == "" {
		return nil, nil
	}
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).
		Where("vehicle_id_hash = ?", vehicleIDHash).
		First(&vehicle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) GetByQRToken(ctx context.Context, qrToken string) (*model.Vehicle, error) {
	if qrToken == "" {
		return nil, nil
	}
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).
		Where("qr_code_token = ? AND is_active = TRUE", qrToken).
		First(&vehicle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) ListByDevice(ctx context.Context, deviceID uuid.UUID) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND is_active = TRUE", deviceID).
		Order("created_at ASC").
		Find(&vehicles).Error
	return vehicles, err
}

func (r *VehicleRepository) ListIDsByDevice(ctx context.Context, deviceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("device_id = ?", deviceID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Vehicle{}).Error
}
