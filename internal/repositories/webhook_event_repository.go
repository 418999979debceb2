package repositories

import (
	"errors"

	"studyhub_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrWebhookEventNotFound = errors.New("webhook event not found")

type WebhookEventRepository interface {
	FindByEventID(db *gorm.DB, eventID string) (*models.WebhookEvent, error)
	Save(db *gorm.DB, event *models.WebhookEvent) error
}

type webhookEventRepository struct{}

func NewWebhookEventRepository() WebhookEventRepository {
	return &webhookEventRepository{}
}

func (r *webhookEventRepository) FindByEventID(db *gorm.DB, eventID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWebhookEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// Save - upsert по event_id (повторная попытка после failed перезаписывает статус)
func (r *webhookEventRepository) Save(db *gorm.DB, event *models.WebhookEvent) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "error", "order_id", "payload", "updated_at"}),
	}).Create(event).Error
}
