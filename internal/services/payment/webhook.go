package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Типы событий вебхука, которые обрабатываются
const (
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventOrderPaid         = "order.paid"
)

// WebhookEvent - разобранное тело вебхука Razorpay
type WebhookEvent struct {
	ID      string
	Type    string
	OrderID string
	Payment PaymentEntity
	Raw     []byte
}

// PaymentEntity - payload.payment.entity
type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Email            string `json:"email"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type orderEntity struct {
	ID string `json:"id"`
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity orderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// ParseWebhook разбирает тело. eventID - значение заголовка x-razorpay-event-id,
// если его нет, идентификатором служит sha256 тела.
func ParseWebhook(body []byte, eventID string) (*WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("invalid webhook payload: event is empty")
	}

	if eventID == "" {
		sum := sha256.Sum256(body)
		eventID = "sha256:" + hex.EncodeToString(sum[:])
	}

	orderID := env.Payload.Payment.Entity.OrderID
	if orderID == "" {
		orderID = env.Payload.Order.Entity.ID
	}

	return &WebhookEvent{
		ID:      eventID,
		Type:    env.Event,
		OrderID: orderID,
		Payment: env.Payload.Payment.Entity,
		Raw:     body,
	}, nil
}
