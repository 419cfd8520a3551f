package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'alert_type') THEN
			CREATE TYPE alert_type AS ENUM (
				'lights_on', 'window_open', 'alarm_triggered', 'parking_issue',
				'damage_spotted', 'towing_risk', 'obstruction', 'general'
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		device_id_hash VARCHAR(64) NOT NULL UNIQUE,
		anonymous_token VARCHAR(64) NOT NULL UNIQUE,
		last_latitude DOUBLE PRECISION,
		last_longitude DOUBLE PRECISION,
		alert_radius_km DOUBLE PRECISION NOT NULL DEFAULT 2.0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_devices_last_seen_at ON devices (last_seen_at);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		vehicle_id_hash VARCHAR(64) NOT NULL UNIQUE,
		plate_country_code VARCHAR(2) NOT NULL,
		qr_code_token VARCHAR(64) NOT NULL UNIQUE,
		nickname VARCHAR(50),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_device_id ON vehicles (device_id);`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		alert_type alert_type NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL,
		notification_sent_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_vehicle_id ON alerts (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_device_id ON alerts (device_id);`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_expires_at ON alerts (expires_at);`,
	`CREATE TABLE IF NOT EXISTS push_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		token VARCHAR(255) NOT NULL UNIQUE,
		platform VARCHAR(20) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_push_tokens_device_id ON push_tokens (device_id);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_vehicles_updated_at') THEN
			CREATE TRIGGER trg_vehicles_updated_at
				BEFORE UPDATE ON vehicles
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_push_tokens_updated_at') THEN
			CREATE TRIGGER trg_push_tokens_updated_at
				BEFORE UPDATE ON push_tokens
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
