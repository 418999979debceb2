package dto

import (
	"studyhub_backend/internal/models"
)

// CreateOrderRequest - тело POST /api/pay. AccessToken - запасной способ
// передать токен, если нет заголовка и cookie.
type CreateOrderRequest struct {
	Amount      *int64          `json:"amount" validate:"omitempty,gt=0"`
	PlanType    models.PlanType `json:"plan_type" validate:"omitempty,is-plan-type"`
	AccessToken string          `json:"access_token"`
}

// CreateOrderResponse - данные для открытия checkout на клиенте
type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key"`
}

// VerifyPaymentRequest - то, что checkout вернул клиенту
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

type VerifyPaymentResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Profile *models.Profile `json:"profile,omitempty"`
}

type SubscriptionStatusResponse struct {
	Success   bool            `json:"success"`
	HasActive bool            `json:"hasActive"`
	Profile   *models.Profile `json:"profile"`
}

// WebhookRequest - сырое тело и заголовки вебхука
type WebhookRequest struct {
	Body      []byte
	Signature string
	EventID   string
}

type PaymentListResponse struct {
	Payments []models.Payment `json:"payments"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}
