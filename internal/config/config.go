package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	DevicePepper  string
	VehiclePepper string
}

type RateLimitConfig struct {
	RegisterPerMinute int
	VehiclesPerMinute int
	AlertsPerHour     int
	DefaultPerMinute  int
}

type PushConfig struct {
	ExpoURL string
	Timeout time.Duration
}

type QRConfig struct {
	BaseURL string
}

type CleanupConfig struct {
	Interval           time.Duration
	DeviceInactiveDays int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Push        PushConfig
	QR          QRConfig
	Cleanup     CleanupConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: splitOrigins(v.GetString("ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			TokenTTL:      v.GetDuration("JWT_TOKEN_TTL"),
			DevicePepper:  v.GetString("DEVICE_HASH_PEPPER"),
			VehiclePepper: v.GetString("VEHICLE_HASH_PEPPER"),
		},
		RateLimit: RateLimitConfig{
			RegisterPerMinute: v.GetInt("RATE_LIMIT_REGISTER_PER_MINUTE"),
			VehiclesPerMinute: v.GetInt("RATE_LIMIT_VEHICLES_PER_MINUTE"),
			AlertsPerHour:     v.GetInt("RATE_LIMIT_ALERTS_PER_HOUR"),
			DefaultPerMinute:  v.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Push: PushConfig{
			ExpoURL: v.GetString("EXPO_PUSH_URL"),
			Timeout: v.GetDuration("PUSH_TIMEOUT"),
		},
		QR: QRConfig{
			BaseURL: v.GetString("QR_CODE_BASE_URL"),
		},
		Cleanup: CleanupConfig{
			Interval:           v.GetDuration("CLEANUP_INTERVAL"),
			DeviceInactiveDays: v.GetInt("CLEANUP_DEVICE_INACTIVE_DAYS"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.RateLimit.RegisterPerMinute == 0 {
		cfg.RateLimit.RegisterPerMinute = 10
	}
	if cfg.RateLimit.VehiclesPerMinute == 0 {
		cfg.RateLimit.VehiclesPerMinute = 5
	}
	if cfg.RateLimit.AlertsPerHour == 0 {
		cfg.RateLimit.AlertsPerHour = 10
	}
	if cfg.RateLimit.DefaultPerMinute == 0 {
		cfg.RateLimit.DefaultPerMinute = 60
	}
	if cfg.Push.ExpoURL == "" {
		cfg.Push.ExpoURL = "https://exp.host/--/api/v2/push/send"
	}
	if cfg.Push.Timeout == 0 {
		cfg.Push.Timeout = 10 * time.Second
	}
	if cfg.QR.BaseURL == "" {
		cfg.QR.BaseURL = "https://vizinhoalert.eu/vehicle"
	}
	if cfg.Cleanup.Interval == 0 {
		cfg.Cleanup.Interval = time.Hour
	}
	if cfg.Cleanup.DeviceInactiveDays == 0 {
		cfg.Cleanup.DeviceInactiveDays = 90
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Auth.DevicePepper == "" {
		return fmt.Errorf("DEVICE_HASH_PEPPER is required")
	}
	if cfg.Auth.VehiclePepper == "" {
		return fmt.Errorf("VEHICLE_HASH_PEPPER is required")
	}
	return nil
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
