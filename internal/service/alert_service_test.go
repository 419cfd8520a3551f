package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alert-relay/internal/model"
	"alert-relay/internal/push"
)

type alertFixture struct {
	svc        *AlertService
	alerts     *fakeAlertStore
	vehicles   *fakeVehicleStore
	pushTokens *fakePushTokenStore
	pusher     *fakePusher

	ownerID uuid.UUID
	vehicle *model.Vehicle
}

func newAlertFixture(t *testing.T) *alertFixture {
	t.Helper()

	f := &alertFixture{
		alerts:     newFakeAlertStore(),
		vehicles:   newFakeVehicleStore(),
		pushTokens: newFakePushTokenStore(),
		pusher:     &fakePusher{result: push.Result{Delivered: 1}},
		ownerID:    uuid.New(),
	}
	f.svc = NewAlertService(f.alerts, f.vehicles, f.pushTokens, f.pusher, zerolog.Nop())

	f.vehicle = &model.Vehicle{
		DeviceID:      f.ownerID,
		VehicleIDHash: "hash",
		QRCodeToken:   "qr-token",
		IsActive:      true,
	}
	require.NoError(t, f.vehicles.Create(context.Background(), f.vehicle))

	require.NoError(t, f.pushTokens.Create(context.Background(), &model.PushToken{
		DeviceID: f.ownerID,
		Token:    "ExponentPushToken[owner]",
		Platform: model.PlatformIOS,
		IsActive: true,
	}))

	return f
}

func TestCreateAlertNotifiesOwner(t *testing.T) {
	f := newAlertFixture(t)
	reporter := uuid.New()

	alert, err := f.svc.Create(context.Background(), reporter, CreateAlertInput{
		VehicleQRToken: "qr-token",
		AlertType:      model.AlertTypeLightsOn,
		Latitude:       38.72,
		Longitude:      -9.14,
	})
	require.NoError(t, err)

	assert.Equal(t, reporter, alert.DeviceID)
	assert.Equal(t, f.vehicle.ID, alert.VehicleID)
	assert.False(t, alert.ExpiresAt.IsZero())

	// The owner's active tokens were pushed to and delivery was recorded.
	require.Equal(t, 1, f.pusher.calls)
	require.Len(t, f.pusher.lastTokens, 1)
	assert.Equal(t, "ExponentPushToken[owner]", f.pusher.lastTokens[0].Token)
	assert.NotNil(t, alert.NotificationSentAt)
}

func TestCreateAlertOwnVehicle(t *testing.T) {
	f := newAlertFixture(t)

	_, err := f.svc.Create(context.Background(), f.ownerID, CreateAlertInput{
		VehicleQRToken: "qr-token",
		AlertType:      model.AlertTypeGeneral,
	})
	assert.ErrorIs(t, err, ErrSelfAlert)
	assert.Empty(t, f.alerts.alerts)
	assert.Zero(t, f.pusher.calls)
}

func TestCreateAlertUnknownQRToken(t *testing.T) {
	f := newAlertFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateAlertInput{
		VehicleQRToken: "no-such-token",
		AlertType:      model.AlertTypeGeneral,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAlertRejectsBadInput(t *testing.T) {
	f := newAlertFixture(t)

	tests := []struct {
		name  string
		input CreateAlertInput
	}{
		{"unknown alert type", CreateAlertInput{VehicleQRToken: "qr-token", AlertType: "free_text"}},
		{"empty alert type", CreateAlertInput{VehicleQRToken: "qr-token"}},
		{"latitude out of range", CreateAlertInput{VehicleQRToken: "qr-token", AlertType: model.AlertTypeGeneral, Latitude: 90.5}},
		{"longitude out of range", CreateAlertInput{VehicleQRToken: "qr-token", AlertType: model.AlertTypeGeneral, Longitude: -180.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), uuid.New(), tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreateAlertDeactivatesDeadTokens(t *testing.T) {
	f := newAlertFixture(t)
	f.pusher.result = push.Result{InvalidTokens: []string{"ExponentPushToken[owner]"}}

	alert, err := f.svc.Create(context.Background(), uuid.New(), CreateAlertInput{
		VehicleQRToken: "qr-token",
		AlertType:      model.AlertTypeGeneral,
	})
	require.NoError(t, err)

	token := f.pushTokens.tokens["ExponentPushToken[owner]"]
	require.NotNil(t, token)
	assert.False(t, token.IsActive)

	// Nothing was delivered, so the alert is not marked notified.
	assert.Nil(t, alert.NotificationSentAt)
}

func TestCreateAlertSurvivesPushFailure(t *testing.T) {
	f := newAlertFixture(t)
	f.pusher.err = errors.New("push service down")

	alert, err := f.svc.Create(context.Background(), uuid.New(), CreateAlertInput{
		VehicleQRToken: "qr-token",
		AlertType:      model.AlertTypeGeneral,
	})
	require.NoError(t, err)
	assert.Nil(t, alert.NotificationSentAt)
	assert.Len(t, f.alerts.alerts, 1)
}

func TestListMine(t *testing.T) {
	f := newAlertFixture(t)
	reporter := uuid.New()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		alert := &model.Alert{
			DeviceID:  reporter,
			VehicleID: f.vehicle.ID,
			AlertType: model.AlertTypeGeneral,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.alerts.Create(context.Background(), alert))
	}

	list, err := f.svc.ListMine(context.Background(), f.ownerID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, list.Alerts, 2)
	assert.Equal(t, int64(3), list.Total)
	assert.True(t, list.HasMore)
	// Newest first.
	assert.True(t, list.Alerts[0].CreatedAt.After(list.Alerts[1].CreatedAt))

	list, err = f.svc.ListMine(context.Background(), f.ownerID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Alerts, 3)
	assert.False(t, list.HasMore)
}

func TestListMineNoVehicles(t *testing.T) {
	f := newAlertFixture(t)

	list, err := f.svc.ListMine(context.Background(), uuid.New(), 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Alerts)
	assert.False(t, list.HasMore)
	assert.Zero(t, list.Total)
}

func TestAlertGetScopedToVehicleOwner(t *testing.T) {
	f := newAlertFixture(t)
	reporter := uuid.New()

	alert, err := f.svc.Create(context.Background(), reporter, CreateAlertInput{
		VehicleQRToken: "qr-token",
		AlertType:      model.AlertTypeGeneral,
	})
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), f.ownerID, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.ID, got.ID)

	// The reporter owns no vehicle the alert points at.
	_, err = f.svc.Get(context.Background(), reporter, alert.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
