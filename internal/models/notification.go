// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationRequestDecided  NotificationType = "request_decided"
	NotificationRequestAssigned NotificationType = "request_assigned"
	NotificationAssetReturned   NotificationType = "asset_returned"
	NotificationPaymentRecorded NotificationType = "payment_recorded"
)

type Notification struct {
	BaseModel
	UserID  uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type    NotificationType `json:"type" gorm:"type:varchar(40);not null;index"`
	Title   string           `json:"title" gorm:"size:255;not null"`
	Message string           `json:"message" gorm:"type:text"`
	Data    JSONB            `json:"data" gorm:"type:jsonb"`
	ReadAt  *time.Time       `json:"read_at"`
}
