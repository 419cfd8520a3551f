package service

import (
	"context"

	"github.com/google/uuid"

	"alert-relay/internal/model"
)

const (
	minPushTokenLen = 10
	maxPushTokenLen = 255
)

type PushTokenService struct {
	pushTokenRepo PushTokenStore
}

func NewPushTokenService(pushTokenRepo PushTokenStore) *PushTokenService {
	return &PushTokenService{pushTokenRepo: pushTokenRepo}
}

type RegisterPushTokenInput struct {
	Token    string
	Platform model.Platform
}

// Register stores a push token for the device. A token seen before is
// re-pointed at the caller; older tokens for the same platform are retired.
func (s *PushTokenService) Register(ctx context.Context, deviceID uuid.UUID, input RegisterPushTokenInput) (*model.PushToken, error) {
	if len(input.Token) < minPushTokenLen || len(input.Token) > maxPushTokenLen {
		return nil, ErrInvalidInput
	}
	if !input.Platform.IsValid() {
		return nil, ErrInvalidInput
	}

	existing, err := s.pushTokenRepo.GetByToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.DeviceID = deviceID
		existing.Platform = input.Platform
		existing.IsActive = true
		if err := s.pushTokenRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	if err := s.pushTokenRepo.DeactivateByDeviceAndPlatform(ctx, deviceID, input.Platform); err != nil {
		return nil, err
	}

	pushToken := &model.PushToken{
		DeviceID: deviceID,
		Token:    input.Token,
		Platform: input.Platform,
		IsActive: true,
	}
	if err := s.pushTokenRepo.Create(ctx, pushToken); err != nil {
		return nil, err
	}

	return pushToken, nil
}

// Delete removes a token. Removing an unknown token is not an error.
func (s *PushTokenService) Delete(ctx context.Context, deviceID uuid.UUID, token string) error {
	return s.pushTokenRepo.Delete(ctx, deviceID, token)
}
