package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
)

var (
	// ErrNotConfigured - не заданы key id / key secret
	ErrNotConfigured = errors.New("razorpay credentials are not configured")
	// ErrWebhookNotConfigured - не задан секрет вебхука
	ErrWebhookNotConfigured = errors.New("razorpay webhook secret is not configured")
	ErrSignatureMismatch    = errors.New("signature mismatch")
)

// OrderRequest - параметры создания заказа у шлюза
type OrderRequest struct {
	Amount   int64 // в минимальных единицах валюты
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order - заказ шлюза
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// Gateway - операции с платежным шлюзом, которыми пользуется подписка
type Gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) error
	VerifyWebhookSignature(body []byte, signature string) error
}

// Config - ключи Razorpay
type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// orderCreator - часть SDK, которая создает заказы (client.Order)
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayService struct {
	cfg    Config
	orders orderCreator
}

// NewRazorpayService не падает при пустых ключах: ошибка конфигурации
// возвращается из каждого вызова, остальное приложение продолжает работать.
func NewRazorpayService(cfg Config) *RazorpayService {
	s := &RazorpayService{cfg: cfg}
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		s.orders = razorpay.NewClient(cfg.KeyID, cfg.KeySecret).Order
	}
	return s
}

func (s *RazorpayService) KeyID() string {
	return s.cfg.KeyID
}

// CreateOrder - один вызов API шлюза, без повторов
func (s *RazorpayService) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if s.orders == nil {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		notes := make(map[string]interface{}, len(req.Notes))
		for k, v := range req.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	resp, err := s.orders.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	return parseOrder(resp, req)
}

func parseOrder(resp map[string]interface{}, req OrderRequest) (*Order, error) {
	id, _ := resp["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order create: response has no order id")
	}

	order := &Order{
		ID:       id,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}
	// числа из JSON ответа SDK приходят как float64
	if amount, ok := resp["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	if currency, ok := resp["currency"].(string); ok && currency != "" {
		order.Currency = currency
	}
	if status, ok := resp["status"].(string); ok {
		order.Status = status
	}
	return order, nil
}

// VerifyPaymentSignature проверяет hex(HMAC_SHA256(key_secret, order_id|payment_id))
func (s *RazorpayService) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if s.cfg.KeySecret == "" {
		return ErrNotConfigured
	}
	expected := SignPayment(s.cfg.KeySecret, orderID, paymentID)
	if !signatureEqual(expected, signature) {
		return ErrSignatureMismatch
	}
	return nil
}

// VerifyWebhookSignature проверяет hex(HMAC_SHA256(webhook_secret, raw_body))
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		return ErrWebhookNotConfigured
	}
	expected := SignWebhook(s.cfg.WebhookSecret, body)
	if !signatureEqual(expected, signature) {
		return ErrSignatureMismatch
	}
	return nil
}

// SignPayment - подпись, которую шлюз отдает клиенту после оплаты
func SignPayment(secret, orderID, paymentID string) string {
	return sign(secret, []byte(orderID+"|"+paymentID))
}

// SignWebhook - подпись тела вебхука (заголовок x-razorpay-signature)
func SignWebhook(secret string, body []byte) string {
	return sign(secret, body)
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// signatureEqual - сравнение за постоянное время, регистр hex не важен
func signatureEqual(expected, got string) bool {
	got = strings.ToLower(strings.TrimSpace(got))
	if got == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(got))
}
