package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alert-relay/internal/auth"
	"alert-relay/internal/model"
	"alert-relay/internal/security"
)

const (
	minDeviceIDLen = 16
	maxDeviceIDLen = 64

	minAlertRadiusKm = 0.5
	maxAlertRadiusKm = 5.0
)

type DeviceService struct {
	deviceRepo DeviceStore
	hasher     *security.Hasher
	tokens     *auth.TokenManager
}

func NewDeviceService(
	deviceRepo DeviceStore,
	hasher *security.Hasher,
	tokens *auth.TokenManager,
) *DeviceService {
	return &DeviceService{
		deviceRepo: deviceRepo,
		hasher:     hasher,
		tokens:     tokens,
	}
}

type RegisterDeviceInput struct {
	DeviceID  string
	Latitude  *float64
	Longitude *float64
}

type RegisterDeviceOutput struct {
	AccessToken string
	DeviceUUID  uuid.UUID
}

// RegisterOrLogin creates an anonymous registration for a new device or
// refreshes an existing one. Either way the caller gets a fresh token.
func (s *DeviceService) RegisterOrLogin(ctx context.Context, input RegisterDeviceInput) (*RegisterDeviceOutput, error) {
	if len(input.DeviceID) < minDeviceIDLen || len(input.DeviceID) > maxDeviceIDLen {
		return nil, ErrInvalidInput
	}
	if !validCoordinates(input.Latitude, input.Longitude) {
		return nil, ErrInvalidInput
	}

	deviceHash := s.hasher.HashDeviceID(input.DeviceID)

	device, err := s.deviceRepo.GetByHash(ctx, deviceHash)
	if err != nil {
		return nil, err
	}

	if device != nil {
		device.LastSeenAt = time.Now().UTC()
		if input.Latitude != nil && input.Longitude != nil {
			device.LastLatitude = input.Latitude
			device.LastLongitude = input.Longitude
		}
		if err := s.deviceRepo.Update(ctx, device); err != nil {
			return nil, err
		}
	} else {
		anonymousToken, err := security.NewToken(32)
		if err != nil {
			return nil, err
		}
		device = &model.Device{
			DeviceIDHash:   deviceHash,
			AnonymousToken: anonymousToken,
			LastLatitude:   input.Latitude,
			LastLongitude:  input.Longitude,
			AlertRadiusKm:  2.0,
			IsActive:       true,
		}
		if err := s.deviceRepo.Create(ctx, device); err != nil {
			return nil, err
		}
	}

	accessToken, err := s.tokens.Issue(device.ID)
	if err != nil {
		return nil, err
	}

	return &RegisterDeviceOutput{
		AccessToken: accessToken,
		DeviceUUID:  device.ID,
	}, nil
}

func (s *DeviceService) Get(ctx context.Context, deviceID uuid.UUID) (*model.Device, error) {
	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrNotFound
	}
	return device, nil
}

type UpdateDeviceInput struct {
	Latitude      float64
	Longitude     float64
	AlertRadiusKm *float64
}

func (s *DeviceService) Update(ctx context.Context, deviceID uuid.UUID, input UpdateDeviceInput) (*model.Device, error) {
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return nil, ErrInvalidInput
	}
	if input.AlertRadiusKm != nil && (*input.AlertRadiusKm < minAlertRadiusKm || *input.AlertRadiusKm > maxAlertRadiusKm) {
		return nil, ErrInvalidInput
	}

	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrNotFound
	}

	device.LastLatitude = &input.Latitude
	device.LastLongitude = &input.Longitude
	device.LastSeenAt = time.Now().UTC()
	if input.AlertRadiusKm != nil {
		device.AlertRadiusKm = *input.AlertRadiusKm
	}

	if err := s.deviceRepo.Update(ctx, device); err != nil {
		return nil, err
	}

	return device, nil
}

// Delete removes the device and everything attached to it (right to
// erasure). Deleting an already-gone device is not an error.
func (s *DeviceService) Delete(ctx context.Context, deviceID uuid.UUID) error {
	return s.deviceRepo.Delete(ctx, deviceID)
}

func validCoordinates(lat, lon *float64) bool {
	if lat == nil && lon == nil {
		return true
	}
	if lat == nil || lon == nil {
		return false
	}
	return *lat >= -90 && *lat <= 90 && *lon >= -180 && *lon <= 180
}
