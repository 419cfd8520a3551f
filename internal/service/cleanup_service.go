package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CleanupService enforces the retention policy: expired alerts and
// long-inactive devices are removed on a fixed interval.
type CleanupService struct {
	alertRepo          AlertStore
	deviceRepo         DeviceStore
	interval           time.Duration
	deviceInactiveDays int
	log                zerolog.Logger
}

func NewCleanupService(
	alertRepo AlertStore,
	deviceRepo DeviceStore,
	interval time.Duration,
	deviceInactiveDays int,
	log zerolog.Logger,
) *CleanupService {
	return &CleanupService{
		alertRepo:          alertRepo,
		deviceRepo:         deviceRepo,
		interval:           interval,
		deviceInactiveDays: deviceInactiveDays,
		log:                log,
	}
}

// Run blocks until ctx is cancelled, sweeping on every tick. A first sweep
// runs immediately at startup.
func (s *CleanupService) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CleanupService) sweep(ctx context.Context) {
	alerts, err := s.alertRepo.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cleanup expired alerts")
	} else if alerts > 0 {
		s.log.Info().Int64("count", alerts).Msg("removed expired alerts")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.deviceInactiveDays)
	devices, err := s.deviceRepo.DeleteInactiveSince(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("cleanup inactive devices")
	} else if devices > 0 {
		s.log.Info().Int64("count", devices).Msg("removed inactive devices")
	}
}
