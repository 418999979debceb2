package models

import "gorm.io/datatypes"

// WebhookEvent - журнал входящих событий шлюза, EventID уникален,
// повторная доставка того же события не обрабатывается второй раз.
type WebhookEvent struct {
	BaseModel
	EventID   string             `gorm:"size:128;not null;uniqueIndex" json:"event_id"`
	EventType string             `gorm:"size:64;not null;index" json:"event_type"`
	OrderID   string             `gorm:"size:64;index" json:"order_id"`
	Payload   datatypes.JSON     `json:"payload"`
	Status    WebhookEventStatus `gorm:"type:varchar(20);not null" json:"status"`
	Error     string             `gorm:"size:500" json:"error,omitempty"`
}
