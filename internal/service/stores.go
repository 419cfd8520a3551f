package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alert-relay/internal/model"
	"alert-relay/internal/push"
)

// The services depend on these narrow store interfaces instead of the
// concrete gorm repositories. The repository types satisfy them; tests
// substitute in-memory fakes.

type DeviceStore interface {
	Create(ctx context.Context, device *model.Device) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Device, error)
	GetByHash(ctx context.Context, deviceIDHash string) (*model.Device, error)
	Update(ctx context.Context, device *model.Device) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteInactiveSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type VehicleStore interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	GetByHash(ctx context.Context, vehicleIDHash string) (*model.Vehicle, error)
	GetByQRToken(ctx context.Context, qrToken string) (*model.Vehicle, error)
	ListByDevice(ctx context.Context, deviceID uuid.UUID) ([]model.Vehicle, error)
	ListIDsByDevice(ctx context.Context, deviceID uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AlertStore interface {
	Create(ctx context.Context, alert *model.Alert) error
	Update(ctx context.Context, alert *model.Alert) error
	GetForVehicles(ctx context.Context, id uuid.UUID, vehicleIDs []uuid.UUID) (*model.Alert, error)
	ListForVehicles(ctx context.Context, vehicleIDs []uuid.UUID, limit, offset int) ([]model.Alert, int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type PushTokenStore interface {
	Create(ctx context.Context, token *model.PushToken) error
	Update(ctx context.Context, token *model.PushToken) error
	GetByToken(ctx context.Context, token string) (*model.PushToken, error)
	ListActiveByDevice(ctx context.Context, deviceID uuid.UUID) ([]model.PushToken, error)
	DeactivateByDeviceAndPlatform(ctx context.Context, deviceID uuid.UUID, platform model.Platform) error
	DeactivateTokens(ctx context.Context, tokens []string) error
	Delete(ctx context.Context, deviceID uuid.UUID, token string) error
}

// AlertPusher delivers alert notifications to a device's push tokens.
type AlertPusher interface {
	NotifyAlert(ctx context.Context, tokens []model.PushToken, alert *model.Alert) (push.Result, error)
}
