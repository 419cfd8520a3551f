package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alert-relay/internal/model"
)

type PushTokenRepository struct {
	db *gorm.DB
}

func NewPushTokenRepository(db *gorm.DB) *PushTokenRepository {
	return &PushTokenRepository{db: db}
}

func (r *PushTokenRepository) Create(ctx context.Context, token *model.PushToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *PushTokenRepository) Update(ctx context.Context, token *model.PushToken) error {
	return r.db.WithContext(ctx).Save(token).Error
}

func (r *PushTokenRepository) GetByToken(ctx context.Context, token string) (*model.PushToken, error) {
	var pushToken model.PushToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&pushToken).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &pushToken, nil
}

func (r *PushTokenRepository) ListActiveByDevice(ctx context.Context, deviceID uuid.UUID) ([]model.PushToken, error) {
	var tokens []model.PushToken
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND is_active = TRUE", deviceID).
		Find(&tokens).Error
	return tokens, err
}

// DeactivateByDeviceAndPlatform retires older tokens when a device
// re-registers on the same platform.
func (r *PushTokenRepository) DeactivateByDeviceAndPlatform(ctx context.Context, deviceID uuid.UUID, platform model.Platform) error {
	return r.db.WithContext(ctx).
		Model(&model.PushToken{}).
		Where("device_id = ? AND platform = ?", deviceID, platform).
		Update("is_active", false).Error
}

// DeactivateTokens marks tokens the push provider reported as dead.
func (r *PushTokenRepository) DeactivateTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.PushToken{}).
		Where("token IN ?", tokens).
		Update("is_active", false).Error
}

func (r *PushTokenRepository) Delete(ctx context.Context, deviceID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Where("device_id = ? AND token = ?", deviceID, token).
		Delete(&model.PushToken{}).Error
}
