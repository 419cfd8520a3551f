package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertType is a closed set. Free-text alerts are deliberately not
// supported to prevent harassment through the relay.
type AlertType string

const (
	AlertTypeLightsOn       AlertType = "lights_on"
	AlertTypeWindowOpen     AlertType = "window_open"
	AlertTypeAlarmTriggered AlertType = "alarm_triggered"
	AlertTypeParkingIssue   AlertType = "parking_issue"
	AlertTypeDamageSpotted  AlertType = "damage_spotted"
	AlertTypeTowingRisk     AlertType = "towing_risk"
	AlertTypeObstruction    AlertType = "obstruction"
	AlertTypeGeneral        AlertType = "general"
)

// AlertTypes lists every accepted alert type.
func AlertTypes() []AlertType {
	return []AlertType{
		AlertTypeLightsOn,
		AlertTypeWindowOpen,
		AlertTypeAlarmTriggered,
		AlertTypeParkingIssue,
		AlertTypeDamageSpotted,
		AlertTypeTowingRisk,
		AlertTypeObstruction,
		AlertTypeGeneral,
	}
}

// IsValid reports whether t is one of the predefined alert types.
func (t AlertType) IsValid() bool {
	for _, known := range AlertTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// AlertExpiry is how long alerts are kept before the cleanup loop removes
// them (GDPR auto-delete).
const AlertExpiry = 30 * 24 * time.Hour

// Alert is a community report raised against a vehicle by scanning its QR
// code. The reporter stays anonymous; only device uuids are linked.
type Alert struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DeviceID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	VehicleID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	AlertType          AlertType  `gorm:"type:alert_type;not null" json:"alert_type"`
	Latitude           float64    `gorm:"not null" json:"latitude"`
	Longitude          float64    `gorm:"not null" json:"longitude"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt          time.Time  `gorm:"not null;index" json:"expires_at"`
	NotificationSentAt *time.Time `json:"notification_sent_at,omitempty"`
}

func (Alert) TableName() string {
	return "alerts"
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.ExpiresAt.IsZero() {
		a.ExpiresAt = time.Now().UTC().Add(AlertExpiry)
	}
	return nil
}

// IsExpired reports whether the alert has passed its retention window.
func (a *Alert) IsExpired() bool {
	return time.Now().UTC().After(a.ExpiresAt)
}
