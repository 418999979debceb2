package repositories

import (
	"errors"
	"time"

	"studyhub_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PaymentCompletion - данные, которые пишутся при переводе платежа в completed
type PaymentCompletion struct {
	PaymentID string
	Signature string // пусто для вебхука
	PaidAt    time.Time
}

type PaymentFilter struct {
	Status   models.PaymentStatus
	UserID   string
	Page     int
	PageSize int
}

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.Payment) error
	FindByOrderID(db *gorm.DB, orderID string) (*models.Payment, error)
	FindByOrderAndUser(db *gorm.DB, orderID, userID string) (*models.Payment, error)
	MarkCompleted(db *gorm.DB, id string, c PaymentCompletion) (bool, error)
	MarkFailed(db *gorm.DB, id, paymentID, reason string) (bool, error)
	SetSubscriptionApplied(db *gorm.DB, id string, at time.Time) error
	List(db *gorm.DB, filter PaymentFilter) ([]models.Payment, int64, error)
}

type paymentRepository struct{}

func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(db *gorm.DB, payment *models.Payment) error {
	return db.Create(payment).Error
}

func (r *paymentRepository) FindByOrderID(db *gorm.DB, orderID string) (*models.Payment, error) {
	return r.findOne(db.Where("razorpay_order_id = ?", orderID))
}

// FindByOrderAndUser - заказ ищется только среди платежей вызывающего
func (r *paymentRepository) FindByOrderAndUser(db *gorm.DB, orderID, userID string) (*models.Payment, error) {
	return r.findOne(db.Where("razorpay_order_id = ? AND user_id = ?", orderID, userID))
}

func (r *paymentRepository) findOne(q *gorm.DB) (*models.Payment, error) {
	var payment models.Payment
	if err := q.First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// MarkCompleted - условный переход в completed. false означает, что платеж
// уже был завершен раньше и повторно ничего применять не нужно.
func (r *paymentRepository) MarkCompleted(db *gorm.DB, id string, c PaymentCompletion) (bool, error) {
	fields := map[string]interface{}{
		"status":         models.PaymentStatusCompleted,
		"paid_at":        c.PaidAt,
		"failure_reason": nil,
	}
	if c.PaymentID != "" {
		fields["razorpay_payment_id"] = c.PaymentID
	}
	if c.Signature != "" {
		fields["razorpay_signature"] = c.Signature
	}

	result := db.Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, models.PaymentStatusCompleted).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed не трогает уже завершенные платежи
func (r *paymentRepository) MarkFailed(db *gorm.DB, id, paymentID, reason string) (bool, error) {
	fields := map[string]interface{}{
		"status":         models.PaymentStatusFailed,
		"failure_reason": reason,
	}
	if paymentID != "" {
		fields["razorpay_payment_id"] = paymentID
	}

	result := db.Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, models.PaymentStatusCompleted).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) SetSubscriptionApplied(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Payment{}).Where("id = ?", id).Update("subscription_applied_at", at).Error
}

func (r *paymentRepository) List(db *gorm.DB, filter PaymentFilter) ([]models.Payment, int64, error) {
	q := db.Model(&models.Payment{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := normalizePageSize(filter.PageSize)
	var payments []models.Payment
	err := q.Order("created_at DESC").
		Offset(offset(filter.Page, pageSize)).
		Limit(pageSize).
		Find(&payments).Error
	return payments, total, err
}

func normalizePageSize(pageSize int) int {
	if pageSize <= 0 {
		return 20
	}
	return pageSize
}

func offset(page, pageSize int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * pageSize
}
