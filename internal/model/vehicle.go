package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle stores a one-way hash of the normalized license plate plus the QR
// token other devices scan to raise alerts. The plate itself is never
// persisted; only the detected country code survives as routing metadata.
type Vehicle struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DeviceID         uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	VehicleIDHash    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	PlateCountryCode string    `gorm:"type:varchar(2);not null" json:"plate_country_code"`
	QRCodeToken      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"qr_code_token"`
	Nickname         *string   `gorm:"type:varchar(50)" json:"nickname,omitempty"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
