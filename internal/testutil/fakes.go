package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"studyhub_backend/internal/email"
	"studyhub_backend/internal/services/payment"
	"studyhub_backend/internal/storage"
)

const (
	TestKeyID         = "rzp_test_key"
	TestKeySecret     = "rzp_test_secret"
	TestWebhookSecret = "whsec_test"
)

// ============================================
// ШЛЮЗ
// ============================================

// FakeGateway - подписи проверяет настоящий RazorpayService,
// заказы создаются локально без сети
type FakeGateway struct {
	*payment.RazorpayService

	mu        sync.Mutex
	seq       int
	Requests  []payment.OrderRequest
	CreateErr error
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		RazorpayService: payment.NewRazorpayService(payment.Config{
			KeyID:         TestKeyID,
			KeySecret:     TestKeySecret,
			WebhookSecret: TestWebhookSecret,
		}),
	}
}

func (g *FakeGateway) CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Requests = append(g.Requests, req)
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	g.seq++
	return &payment.Order{
		ID:       fmt.Sprintf("order_test_%d", g.seq),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

// SignPayment - подпись, которую вернул бы checkout
func SignPayment(orderID, paymentID string) string {
	return payment.SignPayment(TestKeySecret, orderID, paymentID)
}

func SignWebhook(body []byte) string {
	return payment.SignWebhook(TestWebhookSecret, body)
}

// ============================================
// ХРАНИЛИЩЕ
// ============================================

var ErrStorageUnavailable = errors.New("storage unavailable")

// FakeStorage - хранилище в памяти. FailSaves первых вызовов Save завершаются ошибкой.
type FakeStorage struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	FailSaves int
	SaveCalls int
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{Objects: map[string][]byte{}}
}

func (s *FakeStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SaveCalls++
	if s.FailSaves > 0 {
		s.FailSaves--
		return ErrStorageUnavailable
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.Objects[path] = data
	return nil
}

func (s *FakeStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Objects[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *FakeStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Objects[path]; !ok {
		return storage.ErrNotFound
	}
	delete(s.Objects, path)
	return nil
}

func (s *FakeStorage) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[path]
	return ok, nil
}

func (s *FakeStorage) GetURL(ctx context.Context, path string) (string, error) {
	return "https://files.test/" + strings.TrimPrefix(path, "/"), nil
}

func (s *FakeStorage) GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	if ok, _ := s.Exists(ctx, path); !ok {
		return "", storage.ErrNotFound
	}
	return fmt.Sprintf("https://files.test/%s?expires=%d", path, int(expiry.Seconds())), nil
}

func (s *FakeStorage) GetSize(ctx context.Context, path string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Objects[path]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return int64(len(data)), nil
}

// ============================================
// ПОЧТА
// ============================================

// SentMail - одно отправленное письмо
type SentMail struct {
	To       []string
	Subject  string
	Template string
	Data     email.TemplateData
}

type RecordingMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *RecordingMailer) Send(ctx context.Context, e *email.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMail{To: e.To, Subject: e.Subject})
	return m.Err
}

func (m *RecordingMailer) SendTemplate(ctx context.Context, to []string, subject, templateName string, data email.TemplateData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Template: templateName, Data: data})
	return m.Err
}

func (m *RecordingMailer) Validate() error { return nil }

func (m *RecordingMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
