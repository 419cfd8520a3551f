package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"alert-relay/internal/auth"
	"alert-relay/internal/config"
	"alert-relay/internal/db"
	httphandler "alert-relay/internal/http"
	"alert-relay/internal/http/middleware"
	"alert-relay/internal/logger"
	"alert-relay/internal/push"
	"alert-relay/internal/qr"
	"alert-relay/internal/repository"
	"alert-relay/internal/security"
	"alert-relay/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	deviceRepo := repository.NewDeviceRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	alertRepo := repository.NewAlertRepository(database)
	pushTokenRepo := repository.NewPushTokenRepository(database)

	hasher := security.NewHasher(cfg.Auth.DevicePepper, cfg.Auth.VehiclePepper)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	qrGenerator := qr.NewGenerator(cfg.QR.BaseURL)
	pushClient := push.NewExpoClient(cfg)

	deviceService := service.NewDeviceService(deviceRepo, hasher, tokenManager)
	vehicleService := service.NewVehicleService(vehicleRepo, hasher, qrGenerator)
	alertService := service.NewAlertService(alertRepo, vehicleRepo, pushTokenRepo, pushClient, appLogger)
	pushTokenService := service.NewPushTokenService(pushTokenRepo)
	cleanupService := service.NewCleanupService(alertRepo, deviceRepo, cfg.Cleanup.Interval, cfg.Cleanup.DeviceInactiveDays, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupService.Run(ctx)

	handler := httphandler.NewHandler(deviceService, vehicleService, alertService, pushTokenService, appLogger)
	authMiddleware := middleware.Auth(tokenManager)
	limits := httphandler.RateLimiters{
		Register: middleware.NewRateLimiter(cfg.RateLimit.RegisterPerMinute, time.Minute).Middleware(),
		Vehicles: middleware.NewRateLimiter(cfg.RateLimit.VehiclesPerMinute, time.Minute).Middleware(),
		Alerts:   middleware.NewRateLimiter(cfg.RateLimit.AlertsPerHour, time.Hour).Middleware(),
	}
	router := httphandler.NewRouter(handler, authMiddleware, limits, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting alert relay")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
