package models

import "time"

// Payment - одна попытка оплаты через Razorpay. Строки не удаляются.
type Payment struct {
	BaseModel
	UserID            string        `gorm:"size:36;not null;index" json:"user_id"`
	RazorpayOrderID   string        `gorm:"size:64;not null;uniqueIndex" json:"razorpay_order_id"`
	RazorpayPaymentID *string       `gorm:"size:64;index" json:"razorpay_payment_id"`
	RazorpaySignature *string       `gorm:"size:128" json:"-"`
	Amount            int64         `gorm:"not null" json:"amount"` // в минимальных единицах валюты
	Currency          string        `gorm:"size:3;not null" json:"currency"`
	Status            PaymentStatus `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	PlanType          PlanType      `gorm:"type:varchar(20);not null;default:'semester'" json:"plan_type"`
	FailureReason     *string       `gorm:"size:500" json:"failure_reason,omitempty"`

	PaidAt                *time.Time `json:"paid_at,omitempty"`
	SubscriptionAppliedAt *time.Time `json:"subscription_applied_at,omitempty"`
}
