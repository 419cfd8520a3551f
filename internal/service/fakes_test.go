package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"alert-relay/internal/model"
	"alert-relay/internal/push"
)

// In-memory stores backing the service tests. Create mirrors the gorm
// BeforeCreate hooks so services see the same defaults as against a real
// database.

type fakeDeviceStore struct {
	devices map[uuid.UUID]*model.Device
}

func newFakeDeviceStore() *fakeDeviceStore {
	return &fakeDeviceStore{devices: make(map[uuid.UUID]*model.Device)}
}

func (s *fakeDeviceStore) Create(_ context.Context, device *model.Device) error {
	if err := device.BeforeCreate(nil); err != nil {
		return err
	}
	s.devices[device.ID] = device
	return nil
}

func (s *fakeDeviceStore) GetByID(_ context.Context, id uuid.UUID) (*model.Device, error) {
	return s.devices[id], nil
}

func (s *fakeDeviceStore) GetByHash(_ context.Context, deviceIDHash string) (*model.Device, error) {
	for _, d := range s.devices {
		if d.DeviceIDHash == deviceIDHash {
			return d, nil
		}
	}
	return nil, nil
}

func (s *fakeDeviceStore) Update(_ context.Context, device *model.Device) error {
	s.devices[device.ID] = device
	return nil
}

func (s *fakeDeviceStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.devices, id)
	return nil
}

func (s *fakeDeviceStore) DeleteInactiveSince(_ context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for id, d := range s.devices {
		if d.LastSeenAt.Before(cutoff) {
			delete(s.devices, id)
			removed++
		}
	}
	return removed, nil
}

type fakeVehicleStore struct {
	vehicles map[uuid.UUID]*model.Vehicle
}

func newFakeVehicleStore() *fakeVehicleStore {
	return &fakeVehicleStore{vehicles: make(map[uuid.UUID]*model.Vehicle)}
}

func (s *fakeVehicleStore) Create(_ context.Context, vehicle *model.Vehicle) error {
	if err := vehicle.BeforeCreate(nil); err != nil {
		return err
	}
	s.vehicles[vehicle.ID] = vehicle
	return nil
}

func (s *fakeVehicleStore) GetByID(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return s.vehicles[id], nil
}

func (s *fakeVehicleStore) GetByHash(_ context.Context, vehicleIDHash string) (*model.Vehicle, error) {
	if vehicleIDHash == "" {
		return nil, nil
	}
	for _, v := range s.vehicles {
		if v.VehicleIDHash == vehicleIDHash {
			return v, nil
		}
	}
	return nil, nil
}

func (s *fakeVehicleStore) GetByQRToken(_ context.Context, qrToken string) (*model.Vehicle, error) {
	if qrToken == "" {
		return nil, nil
	}
	for _, v := range s.vehicles {
		if v.QRCodeToken == qrToken && v.IsActive {
			return v, nil
		}
	}
	return nil, nil
}

func (s *fakeVehicleStore) ListByDevice(_ context.Context, deviceID uuid.UUID) ([]model.Vehicle, error) {
	var out []model.Vehicle
	for _, v := range s.vehicles {
		if v.DeviceID == deviceID && v.IsActive {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeVehicleStore) ListIDsByDevice(_ context.Context, deviceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, v := range s.vehicles {
		if v.DeviceID == deviceID {
			ids = append(ids, v.ID)
		}
	}
	return ids, nil
}

func (s *fakeVehicleStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.vehicles, id)
	return nil
}

type fakeAlertStore struct {
	alerts map[uuid.UUID]*model.Alert
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{alerts: make(map[uuid.UUID]*model.Alert)}
}

func (s *fakeAlertStore) Create(_ context.Context, alert *model.Alert) error {
	if err := alert.BeforeCreate(nil); err != nil {
		return err
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	s.alerts[alert.ID] = alert
	return nil
}

func (s *fakeAlertStore) Update(_ context.Context, alert *model.Alert) error {
	s.alerts[alert.ID] = alert
	return nil
}

func (s *fakeAlertStore) GetForVehicles(_ context.Context, id uuid.UUID, vehicleIDs []uuid.UUID) (*model.Alert, error) {
	alert, ok := s.alerts[id]
	if !ok {
		return nil, nil
	}
	for _, vid := range vehicleIDs {
		if alert.VehicleID == vid {
			return alert, nil
		}
	}
	return nil, nil
}

func (s *fakeAlertStore) ListForVehicles(_ context.Context, vehicleIDs []uuid.UUID, limit, offset int) ([]model.Alert, int64, error) {
	if len(vehicleIDs) == 0 {
		return nil, 0, nil
	}

	wanted := make(map[uuid.UUID]bool, len(vehicleIDs))
	for _, vid := range vehicleIDs {
		wanted[vid] = true
	}

	var matched []model.Alert
	for _, a := range s.alerts {
		if wanted[a.VehicleID] && !a.IsExpired() {
			matched = append(matched, *a)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit+1 {
		matched = matched[:limit+1]
	}
	return matched, total, nil
}

func (s *fakeAlertStore) DeleteExpired(_ context.Context) (int64, error) {
	var removed int64
	for id, a := range s.alerts {
		if a.IsExpired() {
			delete(s.alerts, id)
			removed++
		}
	}
	return removed, nil
}

type fakePushTokenStore struct {
	tokens map[string]*model.PushToken
}

func newFakePushTokenStore() *fakePushTokenStore {
	return &fakePushTokenStore{tokens: make(map[string]*model.PushToken)}
}

func (s *fakePushTokenStore) Create(_ context.Context, token *model.PushToken) error {
	if err := token.BeforeCreate(nil); err != nil {
		return err
	}
	s.tokens[token.Token] = token
	return nil
}

func (s *fakePushTokenStore) Update(_ context.Context, token *model.PushToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *fakePushTokenStore) GetByToken(_ context.Context, token string) (*model.PushToken, error) {
	return s.tokens[token], nil
}

func (s *fakePushTokenStore) ListActiveByDevice(_ context.Context, deviceID uuid.UUID) ([]model.PushToken, error) {
	var out []model.PushToken
	for _, t := range s.tokens {
		if t.DeviceID == deviceID && t.IsActive {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakePushTokenStore) DeactivateByDeviceAndPlatform(_ context.Context, deviceID uuid.UUID, platform model.Platform) error {
	for _, t := range s.tokens {
		if t.DeviceID == deviceID && t.Platform == platform {
			t.IsActive = false
		}
	}
	return nil
}

func (s *fakePushTokenStore) DeactivateTokens(_ context.Context, tokens []string) error {
	for _, raw := range tokens {
		if t, ok := s.tokens[raw]; ok {
			t.IsActive = false
		}
	}
	return nil
}

func (s *fakePushTokenStore) Delete(_ context.Context, deviceID uuid.UUID, token string) error {
	if t, ok := s.tokens[token]; ok && t.DeviceID == deviceID {
		delete(s.tokens, token)
	}
	return nil
}

type fakePusher struct {
	result push.Result
	err    error

	calls      int
	lastTokens []model.PushToken
	lastAlert  *model.Alert
}

func (p *fakePusher) NotifyAlert(_ context.Context, tokens []model.PushToken, alert *model.Alert) (push.Result, error) {
	p.calls++
	p.lastTokens = tokens
	p.lastAlert = alert
	if p.err != nil {
		return push.Result{}, p.err
	}
	return p.result, nil
}
