package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"studyhub_backend/internal/email"
	"studyhub_backend/internal/logger"
	"studyhub_backend/internal/models"
	"studyhub_backend/internal/repositories"
	"studyhub_backend/internal/services/dto"
	"studyhub_backend/internal/services/payment"
	"studyhub_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubscriptionService interface {
	// POST /api/pay
	CreateOrder(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	// POST /api/verify
	VerifyPayment(ctx context.Context, db *gorm.DB, userID string, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)
	// POST /api/webhook/razorpay
	HandleWebhook(ctx context.Context, db *gorm.DB, req *dto.WebhookRequest) error
	// GET /api/subscription/status
	GetStatus(ctx context.Context, db *gorm.DB, userID string) (*dto.SubscriptionStatusResponse, error)
	HasActiveSubscription(db *gorm.DB, userID string) (bool, error)

	ListPayments(db *gorm.DB, filter repositories.PaymentFilter) (*dto.PaymentListResponse, error)
}

// SubscriptionConfig - цены и валюта
type SubscriptionConfig struct {
	Currency       string
	SemesterAmount int64
	AnnualAmount   int64
}

func (c SubscriptionConfig) priceFor(plan models.PlanType) int64 {
	if plan == models.PlanAnnual {
		return c.AnnualAmount
	}
	return c.SemesterAmount
}

type subscriptionService struct {
	paymentRepo repositories.PaymentRepository
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
	webhookRepo repositories.WebhookEventRepository
	gateway     payment.Gateway
	mailer      email.Provider
	cfg         SubscriptionConfig

	now      func() time.Time
	dispatch func(func())
}

func NewSubscriptionService(
	paymentRepo repositories.PaymentRepository,
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	webhookRepo repositories.WebhookEventRepository,
	gateway payment.Gateway,
	mailer email.Provider,
	cfg SubscriptionConfig,
) SubscriptionService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if mailer == nil {
		mailer = email.LogProvider{}
	}
	return &subscriptionService{
		paymentRepo: paymentRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		webhookRepo: webhookRepo,
		gateway:     gateway,
		mailer:      mailer,
		cfg:         cfg,
		now:         time.Now,
		dispatch:    func(f func()) { go f() },
	}
}

// ============================================
// СОЗДАНИЕ ЗАКАЗА
// ============================================

func (s *subscriptionService) CreateOrder(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if s.gateway.KeyID() == "" {
		return nil, apperrors.NewConfigurationError("payment", "Payment gateway is not configured")
	}

	plan := models.ParsePlanType(string(req.PlanType))
	price := s.cfg.priceFor(plan)
	amount := price
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 {
		return nil, apperrors.ErrInvalidPaymentAmount
	}
	if amount < price {
		return nil, apperrors.ValidationError(map[string]string{"amount": "Amount is below the plan price"})
	}

	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   amount,
		Currency: s.cfg.Currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"user_id":   userID,
			"plan_type": string(plan),
		},
	})
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, apperrors.NewConfigurationError("payment", "Payment gateway is not configured")
		}
		logger.CtxWithError(ctx, "gateway order creation failed", err, "receipt", receipt)
		return nil, apperrors.NewRemoteServiceError(err, "payment", "Failed to create payment order").
			WithDetails(map[string]string{"gateway_error": err.Error()})
	}

	ctx = logger.WithOrderID(ctx, order.ID)

	record := &models.Payment{
		UserID:          userID,
		RazorpayOrderID: order.ID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Status:          models.PaymentStatusCreated,
		PlanType:        plan,
	}
	if err := s.paymentRepo.Create(db, record); err != nil {
		// заказ у шлюза уже создан, строки в БД нет: нужна ручная сверка по order_id
		logger.CtxWithError(ctx, "payment row insert failed after gateway order was created", err,
			"receipt", receipt, "amount", order.Amount)
		return nil, apperrors.NewDataStoreError(err, "payment", "Failed to record payment order")
	}

	logger.CtxInfo(ctx, "payment order created", "amount", order.Amount, "plan", plan)

	return &dto.CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Key:      s.gateway.KeyID(),
	}, nil
}

// ============================================
// ПРОВЕРКА ОПЛАТЫ
// ============================================

func (s *subscriptionService) VerifyPayment(ctx context.Context, db *gorm.DB, userID string, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	ctx = logger.WithOrderID(ctx, req.RazorpayOrderID)

	err := s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, apperrors.NewConfigurationError("payment", "Payment gateway is not configured")
		}
		logger.CtxWarn(ctx, "payment signature mismatch", "payment_id", req.RazorpayPaymentID)
		return nil, apperrors.ErrInvalidSignature
	}

	record, err := s.paymentRepo.FindByOrderAndUser(db, req.RazorpayOrderID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.NewDataStoreError(err, "payment", "Failed to load payment")
	}

	profile, applied, err := s.activate(ctx, db, record, repositories.PaymentCompletion{
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
	}, "")
	if err != nil {
		return nil, err
	}

	message := "Subscription activated"
	if !applied {
		message = "Payment already verified"
	}
	logger.CtxInfo(ctx, "payment verified", "payment_id", req.RazorpayPaymentID, "applied", applied)

	return &dto.VerifyPaymentResponse{Success: true, Message: message, Profile: profile}, nil
}

// ============================================
// ВЕБХУК
// ============================================

func (s *subscriptionService) HandleWebhook(ctx context.Context, db *gorm.DB, req *dto.WebhookRequest) error {
	if err := s.gateway.VerifyWebhookSignature(req.Body, req.Signature); err != nil {
		if errors.Is(err, payment.ErrWebhookNotConfigured) {
			return apperrors.NewConfigurationError("webhook", "Webhook secret is not configured")
		}
		logger.CtxWarn(ctx, "webhook signature mismatch", "event_id", req.EventID)
		return apperrors.ErrInvalidSignature
	}

	event, err := payment.ParseWebhook(req.Body, req.EventID)
	if err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}
	ctx = logger.WithOrderID(ctx, event.OrderID)

	existing, err := s.webhookRepo.FindByEventID(db, event.ID)
	switch {
	case err == nil && existing.Status != models.WebhookEventFailed:
		logger.CtxInfo(ctx, "webhook event already handled", "event_id", event.ID, "type", event.Type)
		return nil
	case err != nil && !errors.Is(err, repositories.ErrWebhookEventNotFound):
		return apperrors.NewDataStoreError(err, "webhook", "Failed to load webhook event")
	}

	status, procErr := s.processEvent(ctx, db, event)

	record := &models.WebhookEvent{
		EventID:   event.ID,
		EventType: event.Type,
		OrderID:   event.OrderID,
		Payload:   datatypes.JSON(event.Raw),
		Status:    status,
	}
	if procErr != nil {
		record.Error = truncate(procErr.Error(), 500)
	}
	if err := s.webhookRepo.Save(db, record); err != nil {
		logger.CtxWithError(ctx, "failed to record webhook event", err, "event_id", event.ID)
	}

	return procErr
}

func (s *subscriptionService) processEvent(ctx context.Context, db *gorm.DB, event *payment.WebhookEvent) (models.WebhookEventStatus, error) {
	switch event.Type {
	case payment.EventPaymentAuthorized, payment.EventPaymentCaptured, payment.EventOrderPaid:
		record, ok, err := s.findWebhookPayment(ctx, db, event)
		if err != nil {
			return models.WebhookEventFailed, err
		}
		if !ok {
			return models.WebhookEventIgnored, nil
		}
		_, applied, err := s.activate(ctx, db, record, repositories.PaymentCompletion{
			PaymentID: event.Payment.ID,
		}, event.Payment.Email)
		if err != nil {
			return models.WebhookEventFailed, err
		}
		logger.CtxInfo(ctx, "webhook payment processed", "type", event.Type, "payment_id", event.Payment.ID, "applied", applied)
		return models.WebhookEventProcessed, nil

	case payment.EventPaymentFailed:
		record, ok, err := s.findWebhookPayment(ctx, db, event)
		if err != nil {
			return models.WebhookEventFailed, err
		}
		if !ok {
			return models.WebhookEventIgnored, nil
		}
		reason := event.Payment.ErrorDescription
		if reason == "" {
			reason = event.Payment.ErrorCode
		}
		changed, err := s.paymentRepo.MarkFailed(db, record.ID, event.Payment.ID, truncate(reason, 500))
		if err != nil {
			return models.WebhookEventFailed, apperrors.NewDataStoreError(err, "payment", "Failed to mark payment failed")
		}
		if !changed {
			logger.CtxInfo(ctx, "payment already completed, failure ignored", "payment_id", event.Payment.ID)
		} else {
			logger.CtxInfo(ctx, "payment marked failed", "payment_id", event.Payment.ID, "reason", reason)
		}
		return models.WebhookEventProcessed, nil

	default:
		logger.CtxInfo(ctx, "webhook event type ignored", "type", event.Type)
		return models.WebhookEventIgnored, nil
	}
}

// findWebhookPayment - false, если заказ неизвестен (повтор доставки этого не исправит)
func (s *subscriptionService) findWebhookPayment(ctx context.Context, db *gorm.DB, event *payment.WebhookEvent) (*models.Payment, bool, error) {
	if event.OrderID == "" {
		logger.CtxWarn(ctx, "webhook event without order id", "type", event.Type)
		return nil, false, nil
	}
	record, err := s.paymentRepo.FindByOrderID(db, event.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			logger.CtxWarn(ctx, "webhook for unknown order", "type", event.Type)
			return nil, false, nil
		}
		return nil, false, apperrors.NewDataStoreError(err, "payment", "Failed to load payment")
	}
	return record, true, nil
}

// ============================================
// АКТИВАЦИЯ ПОДПИСКИ
// ============================================

// activate - общий путь для verify и вебхука. Платеж переводится в completed
// условным UPDATE, профиль меняется только тем вызовом, который этот переход выполнил.
// Повторные вызовы возвращают applied=false и не сдвигают дату окончания.
func (s *subscriptionService) activate(ctx context.Context, db *gorm.DB, record *models.Payment, completion repositories.PaymentCompletion, fallbackEmail string) (*models.Profile, bool, error) {
	now := s.now().UTC()
	completion.PaidAt = now

	var applied, granted bool
	var grant repositories.SubscriptionGrant

	err := db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.paymentRepo.MarkCompleted(tx, record.ID, completion)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		applied = true

		grant = repositories.SubscriptionGrant{
			UserID:    record.UserID,
			Email:     fallbackEmail,
			Plan:      record.PlanType,
			StartDate: now,
			EndDate:   record.PlanType.EndDate(now),
		}

		// email берется из учетной записи, а не из запроса
		user, err := s.userRepo.FindByID(tx, record.UserID)
		switch {
		case err == nil:
			if user.Status == models.UserStatusDeleted {
				logger.CtxWarn(ctx, "payment completed for deleted account, subscription not applied")
				return nil
			}
			grant.Email = user.Email
			grant.Role = user.Role
		case errors.Is(err, repositories.ErrUserNotFound):
			logger.CtxWarn(ctx, "payment owner not found in identity store")
		default:
			return err
		}

		if err := s.profileRepo.ApplySubscription(tx, grant); err != nil {
			return err
		}
		granted = true
		return s.paymentRepo.SetSubscriptionApplied(tx, record.ID, now)
	})
	if err != nil {
		return nil, false, apperrors.NewDataStoreError(err, "subscription", "Failed to activate subscription")
	}

	profile, err := s.profileRepo.FindByID(db, record.UserID)
	if err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, applied, apperrors.NewDataStoreError(err, "subscription", "Failed to load profile")
	}

	if granted {
		logger.CtxInfo(ctx, "subscription activated", "user_id", record.UserID, "plan", grant.Plan, "end_date", grant.EndDate)
		if grant.Email != "" {
			s.sendReceipt(ctx, record, completion.PaymentID, grant, profile)
		}
	}

	return profile, applied, nil
}

func (s *subscriptionService) sendReceipt(ctx context.Context, record *models.Payment, paymentID string, grant repositories.SubscriptionGrant, profile *models.Profile) {
	name := ""
	if profile != nil {
		name = profile.FullName
	}
	data := email.TemplateData{
		"Name":      name,
		"Plan":      string(grant.Plan),
		"EndDate":   grant.EndDate.Format("02 Jan 2006"),
		"Amount":    formatAmount(record.Amount),
		"Currency":  record.Currency,
		"OrderID":   record.RazorpayOrderID,
		"PaymentID": paymentID,
	}

	mailCtx := context.WithoutCancel(ctx)
	s.dispatch(func() {
		err := s.mailer.SendTemplate(mailCtx, []string{grant.Email}, "Your StudyHub subscription is active",
			email.TemplateSubscriptionReceipt, data)
		if err != nil {
			logger.CtxWithError(mailCtx, "failed to send subscription receipt", err)
		}
	})
}

// ============================================
// СТАТУС
// ============================================

func (s *subscriptionService) GetStatus(ctx context.Context, db *gorm.DB, userID string) (*dto.SubscriptionStatusResponse, error) {
	profile, err := s.profileRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return &dto.SubscriptionStatusResponse{Success: true, HasActive: false}, nil
		}
		return nil, apperrors.NewDataStoreError(err, "subscription", "Failed to load profile")
	}

	return &dto.SubscriptionStatusResponse{
		Success:   true,
		HasActive: profile.HasActiveSubscription(s.now()),
		Profile:   profile,
	}, nil
}

func (s *subscriptionService) HasActiveSubscription(db *gorm.DB, userID string) (bool, error) {
	profile, err := s.profileRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return false, nil
		}
		return false, apperrors.NewDataStoreError(err, "subscription", "Failed to load profile")
	}
	return profile.HasActiveSubscription(s.now()), nil
}

func (s *subscriptionService) ListPayments(db *gorm.DB, filter repositories.PaymentFilter) (*dto.PaymentListResponse, error) {
	payments, total, err := s.paymentRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.NewDataStoreError(err, "payment", "Failed to list payments")
	}
	return &dto.PaymentListResponse{
		Payments: payments,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}
