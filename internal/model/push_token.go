package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

func (p Platform) IsValid() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// PushToken is an Expo push token bound to a device, not a person.
type PushToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DeviceID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	Platform  Platform  `gorm:"type:varchar(20);not null" json:"platform"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PushToken) TableName() string {
	return "push_tokens"
}

func (t *PushToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
