package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"alert-relay/internal/model"
	"alert-relay/internal/plate"
	"alert-relay/internal/qr"
	"alert-relay/internal/security"
)

const maxNicknameLen = 50

type VehicleService struct {
	vehicleRepo VehicleStore
	hasher      *security.Hasher
	qrGen       *qr.Generator
}

func NewVehicleService(
	vehicleRepo VehicleStore,
	hasher *security.Hasher,
	qrGen *qr.Generator,
) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		hasher:      hasher,
		qrGen:       qrGen,
	}
}

type RegisterVehicleInput struct {
	Plate    string
	Nickname string
}

// Register validates the plate, then stores only its peppered hash. The
// plate validation error is returned as-is so the HTTP layer can include
// the format examples in its response.
func (s *VehicleService) Register(ctx context.Context, deviceID uuid.UUID, input RegisterVehicleInput) (*model.Vehicle, error) {
	result, err := plate.Validate(input.Plate)
	if err != nil {
		return nil, err
	}

	nickname := strings.TrimSpace(input.Nickname)
	if len(nickname) > maxNicknameLen {
		return nil, ErrInvalidInput
	}

	vehicleHash := s.hasher.HashVehicleID(result.NormalizedPlate)

	existing, err := s.vehicleRepo.GetByHash(ctx, vehicleHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	qrToken, err := security.NewToken(32)
	if err != nil {
		return nil, err
	}

	vehicle := &model.Vehicle{
		DeviceID:         deviceID,
		VehicleIDHash:    vehicleHash,
		PlateCountryCode: result.CountryCode,
		QRCodeToken:      qrToken,
		IsActive:         true,
	}
	if nickname != "" {
		vehicle.Nickname = &nickname
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	return vehicle, nil
}

func (s *VehicleService) List(ctx context.Context, deviceID uuid.UUID) ([]model.Vehicle, error) {
	return s.vehicleRepo.ListByDevice(ctx, deviceID)
}

func (s *VehicleService) Get(ctx context.Context, deviceID, vehicleID uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil || vehicle.DeviceID != deviceID {
		return nil, ErrNotFound
	}
	return vehicle, nil
}

type VehicleQROutput struct {
	QRCodeURL  string
	QRCodeData string
	VehicleID  uuid.UUID
}

func (s *VehicleService) QRCode(ctx context.Context, deviceID, vehicleID uuid.UUID) (*VehicleQROutput, error) {
	vehicle, err := s.Get(ctx, deviceID, vehicleID)
	if err != nil {
		return nil, err
	}

	url, dataURI, err := s.qrGen.Generate(vehicle.QRCodeToken)
	if err != nil {
		return nil, err
	}

	return &VehicleQROutput{
		QRCodeURL:  url,
		QRCodeData: dataURI,
		VehicleID:  vehicle.ID,
	}, nil
}

func (s *VehicleService) Delete(ctx context.Context, deviceID, vehicleID uuid.UUID) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle == nil || vehicle.DeviceID != deviceID {
		return ErrNotFound
	}
	return s.vehicleRepo.Delete(ctx, vehicleID)
}
