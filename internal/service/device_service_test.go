package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alert-relay/internal/auth"
	"alert-relay/internal/security"
)

const testDeviceID = "device-identifier-0123456789"

func newTestDeviceService(store *fakeDeviceStore) *DeviceService {
	hasher := security.NewHasher("device-pepper", "vehicle-pepper")
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewDeviceService(store, hasher, tokens)
}

func TestRegisterOrLoginNewDevice(t *testing.T) {
	store := newFakeDeviceStore()
	svc := newTestDeviceService(store)

	out, err := svc.RegisterOrLogin(context.Background(), RegisterDeviceInput{DeviceID: testDeviceID})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEqual(t, uuid.Nil, out.DeviceUUID)

	device := store.devices[out.DeviceUUID]
	require.NotNil(t, device)
	assert.True(t, device.IsActive)
	assert.Equal(t, 2.0, device.AlertRadiusKm)
	assert.NotEmpty(t, device.AnonymousToken)
	// Only the hash is stored, never the raw identifier.
	assert.NotContains(t, device.DeviceIDHash, testDeviceID)
	assert.Len(t, device.DeviceIDHash, 64)
}

func TestRegisterOrLoginExistingDevice(t *testing.T) {
	store := newFakeDeviceStore()
	svc := newTestDeviceService(store)

	first, err := svc.RegisterOrLogin(context.Background(), RegisterDeviceInput{DeviceID: testDeviceID})
	require.NoError(t, err)

	lat, lon := 38.72, -9.14
	second, err := svc.RegisterOrLogin(context.Background(), RegisterDeviceInput{
		DeviceID:  testDeviceID,
		Latitude:  &lat,
		Longitude: &lon,
	})
	require.NoError(t, err)

	assert.Equal(t, first.DeviceUUID, second.DeviceUUID)
	assert.Len(t, store.devices, 1)

	device := store.devices[first.DeviceUUID]
	require.NotNil(t, device.LastLatitude)
	assert.Equal(t, lat, *device.LastLatitude)
	assert.Equal(t, lon, *device.LastLongitude)
}

func TestRegisterOrLoginRejectsBadInput(t *testing.T) {
	lat, lon := 38.72, -9.14
	badLat := 91.0

	tests := []struct {
		name  string
		input RegisterDeviceInput
	}{
		{"identifier too short", RegisterDeviceInput{DeviceID: "short"}},
		{"identifier too long", RegisterDeviceInput{DeviceID: strings.Repeat("x", 65)}},
		{"latitude without longitude", RegisterDeviceInput{DeviceID: testDeviceID, Latitude: &lat}},
		{"longitude without latitude", RegisterDeviceInput{DeviceID: testDeviceID, Longitude: &lon}},
		{"latitude out of range", RegisterDeviceInput{DeviceID: testDeviceID, Latitude: &badLat, Longitude: &lon}},
	}

	svc := newTestDeviceService(newFakeDeviceStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterOrLogin(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDeviceGet(t *testing.T) {
	store := newFakeDeviceStore()
	svc := newTestDeviceService(store)

	out, err := svc.RegisterOrLogin(context.Background(), RegisterDeviceInput{DeviceID: testDeviceID})
	require.NoError(t, err)

	device, err := svc.Get(context.Background(), out.DeviceUUID)
	require.NoError(t, err)
	assert.Equal(t, out.DeviceUUID, device.ID)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeviceUpdate(t *testing.T) {
	store := newFakeDeviceStore()
	svc := newTestDeviceService(store)

	out, err := svc.RegisterOrLogin(context.Background(), RegisterDeviceInput{DeviceID: testDeviceID})
	require.NoError(t, err)

	radius := 3.5
	device, err := svc.Update(context.Background(), out.DeviceUUID, UpdateDeviceInput{
		Latitude:      41.15,
		Longitude:     -8.61,
		AlertRadiusKm: &radius,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, device.AlertRadiusKm)
	require.NotNil(t, device.LastLatitude)
	assert.Equal(t, 41.15, *device.LastLatitude)
}

func TestDeviceUpdateRejectsBadInput(t *testing.T) {
	store := newFakeDeviceStore()
	svc := newTestDeviceService(store)

	out, err := svc.RegisterOrLogin(context.Background(), RegisterDeviceInput{DeviceID: testDeviceID})
	require.NoError(t, err)

	tooSmall := 0.4
	tooLarge := 5.1

	tests := []struct {
		name  string
		input UpdateDeviceInput
	}{
		{"latitude out of range", UpdateDeviceInput{Latitude: -90.5, Longitude: 0}},
		{"longitude out of range", UpdateDeviceInput{Latitude: 0, Longitude: 180.5}},
		{"radius below minimum", UpdateDeviceInput{Latitude: 0, Longitude: 0, AlertRadiusKm: &tooSmall}},
		{"radius above maximum", UpdateDeviceInput{Latitude: 0, Longitude: 0, AlertRadiusKm: &tooLarge}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), out.DeviceUUID, tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err = svc.Update(context.Background(), uuid.New(), UpdateDeviceInput{Latitude: 0, Longitude: 0})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeviceDelete(t *testing.T) {
	store := newFakeDeviceStore()
	svc := newTestDeviceService(store)

	out, err := svc.RegisterOrLogin(context.Background(), RegisterDeviceInput{DeviceID: testDeviceID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), out.DeviceUUID))
	assert.Empty(t, store.devices)

	// Deleting an already-gone device is not an error.
	assert.NoError(t, svc.Delete(context.Background(), out.DeviceUUID))
}
