package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"alert-relay/internal/model"
)

type AlertService struct {
	alertRepo     AlertStore
	vehicleRepo   VehicleStore
	pushTokenRepo PushTokenStore
	pushClient    AlertPusher
	log           zerolog.Logger
}

func NewAlertService(
	alertRepo AlertStore,
	vehicleRepo VehicleStore,
	pushTokenRepo PushTokenStore,
	pushClient AlertPusher,
	log zerolog.Logger,
) *AlertService {
	return &AlertService{
		alertRepo:     alertRepo,
		vehicleRepo:   vehicleRepo,
		pushTokenRepo: pushTokenRepo,
		pushClient:    pushClient,
		log:           log,
	}
}

type CreateAlertInput struct {
	VehicleQRToken string
	AlertType      model.AlertType
	Latitude       float64
	Longitude      float64
}

// Create records an alert raised by scanning a vehicle QR code and relays
// it to the owner's devices. Notification delivery is best effort; a push
// failure never fails the alert itself.
func (s *AlertService) Create(ctx context.Context, deviceID uuid.UUID, input CreateAlertInput) (*model.Alert, error) {
	if !input.AlertType.IsValid() {
		return nil, ErrInvalidInput
	}
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return nil, ErrInvalidInput
	}

	vehicle, err := s.vehicleRepo.GetByQRToken(ctx, input.VehicleQRToken)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrNotFound
	}
	if vehicle.DeviceID == deviceID {
		return nil, ErrSelfAlert
	}

	alert := &model.Alert{
		DeviceID:  deviceID,
		VehicleID: vehicle.ID,
		AlertType: input.AlertType,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}
	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, vehicle.DeviceID, alert)

	return alert, nil
}

func (s *AlertService) notifyOwner(ctx context.Context, ownerDeviceID uuid.UUID, alert *model.Alert) {
	tokens, err := s.pushTokenRepo.ListActiveByDevice(ctx, ownerDeviceID)
	if err != nil {
		s.log.Error().Err(err).Msg("load push tokens for alert")
		return
	}
	if len(tokens) == 0 {
		return
	}

	result, err := s.pushClient.NotifyAlert(ctx, tokens, alert)
	if err != nil {
		s.log.Error().Err(err).Str("alert_id", alert.ID.String()).Msg("push delivery failed")
		return
	}

	if len(result.InvalidTokens) > 0 {
		if err := s.pushTokenRepo.DeactivateTokens(ctx, result.InvalidTokens); err != nil {
			s.log.Error().Err(err).Msg("deactivate dead push tokens")
		}
	}

	if result.Delivered > 0 {
		now := time.Now().UTC()
		alert.NotificationSentAt = &now
		if err := s.alertRepo.Update(ctx, alert); err != nil {
			s.log.Error().Err(err).Msg("mark alert notified")
		}
	}
}

type AlertList struct {
	Alerts  []model.Alert
	Total   int64
	HasMore bool
}

// ListMine returns non-expired alerts raised against the caller's vehicles.
func (s *AlertService) ListMine(ctx context.Context, deviceID uuid.UUID, limit, offset int) (*AlertList, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	vehicleIDs, err := s.vehicleRepo.ListIDsByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if len(vehicleIDs) == 0 {
		return &AlertList{Alerts: []model.Alert{}}, nil
	}

	alerts, total, err := s.alertRepo.ListForVehicles(ctx, vehicleIDs, limit, offset)
	if err != nil {
		return nil, err
	}

	hasMore := len(alerts) > limit
	if hasMore {
		alerts = alerts[:limit]
	}

	return &AlertList{
		Alerts:  alerts,
		Total:   total,
		HasMore: hasMore,
	}, nil
}

func (s *AlertService) Get(ctx context.Context, deviceID, alertID uuid.UUID) (*model.Alert, error) {
	vehicleIDs, err := s.vehicleRepo.ListIDsByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	alert, err := s.alertRepo.GetForVehicles(ctx, alertID, vehicleIDs)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrNotFound
	}
	return alert, nil
}
