package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device is an anonymous registration. Only the peppered hash of the caller
// provided device identifier is stored, never the identifier itself.
type Device struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DeviceIDHash   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	AnonymousToken string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	LastLatitude   *float64  `json:"last_latitude,omitempty"`
	LastLongitude  *float64  `json:"last_longitude,omitempty"`
	AlertRadiusKm  float64   `gorm:"not null;default:2.0" json:"alert_radius_km"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastSeenAt     time.Time `gorm:"not null" json:"last_seen_at"`
}

func (Device) TableName() string {
	return "devices"
}

func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.LastSeenAt.IsZero() {
		d.LastSeenAt = time.Now().UTC()
	}
	return nil
}
