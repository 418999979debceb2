package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"studyhub_backend/internal/email"
	"studyhub_backend/internal/models"
	"studyhub_backend/internal/repositories"
	"studyhub_backend/internal/services/dto"
	"studyhub_backend/internal/services/payment"
	"studyhub_backend/internal/testutil"
	"studyhub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

type subscriptionFixture struct {
	db      *gorm.DB
	svc     *subscriptionService
	gateway *testutil.FakeGateway
	mailer  *testutil.RecordingMailer
	student *models.User
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	gateway := testutil.NewFakeGateway()
	mailer := &testutil.RecordingMailer{}

	svc := NewSubscriptionService(
		repositories.NewPaymentRepository(),
		repositories.NewProfileRepository(),
		repositories.NewUserRepository(),
		repositories.NewWebhookEventRepository(),
		gateway,
		mailer,
		SubscriptionConfig{Currency: "INR", SemesterAmount: 49900, AnnualAmount: 89900},
	).(*subscriptionService)
	svc.now = func() time.Time { return fixedNow }
	svc.dispatch = func(f func()) { f() }

	return &subscriptionFixture{
		db:      db,
		svc:     svc,
		gateway: gateway,
		mailer:  mailer,
		student: testutil.CreateUser(t, db, "student@test.com", "password123", models.UserRoleStudent),
	}
}

func (f *subscriptionFixture) createOrder(t *testing.T, plan models.PlanType) *dto.CreateOrderResponse {
	t.Helper()
	resp, err := f.svc.CreateOrder(context.Background(), f.db, f.student.ID, &dto.CreateOrderRequest{PlanType: plan})
	require.NoError(t, err)
	return resp
}

func (f *subscriptionFixture) verify(t *testing.T, orderID, paymentID string) (*dto.VerifyPaymentResponse, error) {
	t.Helper()
	return f.svc.VerifyPayment(context.Background(), f.db, f.student.ID, &dto.VerifyPaymentRequest{
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: testutil.SignPayment(orderID, paymentID),
	})
}

func (f *subscriptionFixture) webhook(t *testing.T, body []byte, eventID string) error {
	t.Helper()
	return f.svc.HandleWebhook(context.Background(), f.db, &dto.WebhookRequest{
		Body:      body,
		Signature: testutil.SignWebhook(body),
		EventID:   eventID,
	})
}

func (f *subscriptionFixture) payment(t *testing.T, orderID string) *models.Payment {
	t.Helper()
	p, err := repositories.NewPaymentRepository().FindByOrderID(f.db, orderID)
	require.NoError(t, err)
	return p
}

func (f *subscriptionFixture) profile(t *testing.T) *models.Profile {
	t.Helper()
	p, err := repositories.NewProfileRepository().FindByID(f.db, f.student.ID)
	require.NoError(t, err)
	return p
}

func paymentWebhookBody(t *testing.T, event, orderID, paymentID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event": event,
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":                paymentID,
					"order_id":          orderID,
					"amount":            49900,
					"currency":          "INR",
					"status":            "captured",
					"error_description": "Card declined",
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.HTTPCode
}

// ============================================
// CreateOrder
// ============================================

func TestCreateOrder_DefaultsToSemesterPrice(t *testing.T) {
	f := newSubscriptionFixture(t)

	resp := f.createOrder(t, "")

	assert.Equal(t, int64(49900), resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, testutil.TestKeyID, resp.Key)
	assert.NotEmpty(t, resp.OrderID)

	p := f.payment(t, resp.OrderID)
	assert.Equal(t, models.PaymentStatusCreated, p.Status)
	assert.Equal(t, models.PlanSemester, p.PlanType)
	assert.Equal(t, f.student.ID, p.UserID)

	require.Len(t, f.gateway.Requests, 1)
	assert.Equal(t, f.student.ID, f.gateway.Requests[0].Notes["user_id"])
	assert.Contains(t, f.gateway.Requests[0].Receipt, "rcpt_")
}

func TestCreateOrder_AnnualPlan(t *testing.T) {
	f := newSubscriptionFixture(t)

	resp := f.createOrder(t, models.PlanAnnual)

	assert.Equal(t, int64(89900), resp.Amount)
	assert.Equal(t, models.PlanAnnual, f.payment(t, resp.OrderID).PlanType)
}

func TestCreateOrder_RejectsAmountBelowPlanPrice(t *testing.T) {
	f := newSubscriptionFixture(t)
	amount := int64(100)

	_, err := f.svc.CreateOrder(context.Background(), f.db, f.student.ID, &dto.CreateOrderRequest{Amount: &amount})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
	assert.Empty(t, f.gateway.Requests)
}

func TestCreateOrder_GatewayFailureLeavesNoRow(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.gateway.CreateErr = errors.New("connection reset")

	_, err := f.svc.CreateOrder(context.Background(), f.db, f.student.ID, &dto.CreateOrderRequest{})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, httpCode(t, err))

	var count int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrder_NotConfigured(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.svc.gateway = payment.NewRazorpayService(payment.Config{})

	_, err := f.svc.CreateOrder(context.Background(), f.db, f.student.ID, &dto.CreateOrderRequest{})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigurationError))
	assert.Equal(t, http.StatusInternalServerError, httpCode(t, err))
}

// ============================================
// VerifyPayment
// ============================================

func TestVerifyPayment_ActivatesSemesterSubscription(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)

	resp, err := f.verify(t, order.OrderID, "pay_1")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "Subscription activated", resp.Message)
	require.NotNil(t, resp.Profile)
	assert.True(t, resp.Profile.SubscriptionActive)
	require.NotNil(t, resp.Profile.SubscriptionEndDate)
	assert.WithinDuration(t, fixedNow.AddDate(0, 6, 0), *resp.Profile.SubscriptionEndDate, time.Second)
	assert.True(t, resp.Profile.HasActiveSubscription(fixedNow))

	p := f.payment(t, order.OrderID)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	require.NotNil(t, p.RazorpayPaymentID)
	assert.Equal(t, "pay_1", *p.RazorpayPaymentID)
	assert.NotNil(t, p.SubscriptionAppliedAt)

	require.Equal(t, 1, f.mailer.Count())
	sent := f.mailer.Sent[0]
	assert.Equal(t, []string{"student@test.com"}, sent.To)
	assert.Equal(t, email.TemplateSubscriptionReceipt, sent.Template)
	assert.Equal(t, "499.00", sent.Data["Amount"])
}

func TestVerifyPayment_SecondCallDoesNotExtend(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)

	_, err := f.verify(t, order.OrderID, "pay_1")
	require.NoError(t, err)
	firstEnd := *f.profile(t).SubscriptionEndDate

	f.svc.now = func() time.Time { return fixedNow.Add(48 * time.Hour) }
	resp, err := f.verify(t, order.OrderID, "pay_1")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "Payment already verified", resp.Message)
	assert.WithinDuration(t, firstEnd, *f.profile(t).SubscriptionEndDate, time.Second)
	assert.Equal(t, 1, f.mailer.Count())
}

func TestVerifyPayment_InvalidSignature(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)

	_, err := f.svc.VerifyPayment(context.Background(), f.db, f.student.ID, &dto.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "deadbeef",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	assert.Equal(t, models.PaymentStatusCreated, f.payment(t, order.OrderID).Status)
	assert.False(t, f.profile(t).SubscriptionActive)
}

func TestVerifyPayment_OrderOfAnotherUser(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)
	other := testutil.CreateUser(t, f.db, "other@test.com", "password123", models.UserRoleStudent)

	_, err := f.svc.VerifyPayment(context.Background(), f.db, other.ID, &dto.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: testutil.SignPayment(order.OrderID, "pay_1"),
	})

	assert.ErrorIs(t, err, apperrors.ErrPaymentNotFound)
	assert.Equal(t, models.PaymentStatusCreated, f.payment(t, order.OrderID).Status)
}

func TestVerifyPayment_DeletedAccountIsNotGranted(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)
	require.NoError(t, repositories.NewUserRepository().Anonymize(f.db, f.student.ID))

	_, err := f.verify(t, order.OrderID, "pay_1")
	require.NoError(t, err)

	p := f.payment(t, order.OrderID)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	assert.Nil(t, p.SubscriptionAppliedAt)
	assert.False(t, f.profile(t).SubscriptionActive)
	assert.Zero(t, f.mailer.Count())
}

func TestVerifyPayment_MailFailureDoesNotFail(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.mailer.Err = errors.New("smtp down")
	order := f.createOrder(t, models.PlanSemester)

	resp, err := f.verify(t, order.OrderID, "pay_1")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, f.profile(t).SubscriptionActive)
}

// ============================================
// HandleWebhook
// ============================================

func TestHandleWebhook_CapturedActivates(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanAnnual)

	err := f.webhook(t, paymentWebhookBody(t, payment.EventPaymentCaptured, order.OrderID, "pay_9"), "evt_1")
	require.NoError(t, err)

	profile := f.profile(t)
	assert.True(t, profile.SubscriptionActive)
	assert.WithinDuration(t, fixedNow.AddDate(1, 0, 0), *profile.SubscriptionEndDate, time.Second)

	event, err := repositories.NewWebhookEventRepository().FindByEventID(f.db, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookEventProcessed, event.Status)
	assert.Equal(t, order.OrderID, event.OrderID)
}

func TestHandleWebhook_RedeliveryIsIgnored(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)
	body := paymentWebhookBody(t, payment.EventPaymentCaptured, order.OrderID, "pay_9")

	require.NoError(t, f.webhook(t, body, "evt_1"))
	firstEnd := *f.profile(t).SubscriptionEndDate

	f.svc.now = func() time.Time { return fixedNow.Add(24 * time.Hour) }
	require.NoError(t, f.webhook(t, body, "evt_1"))
	// то же событие без заголовка id: тот же платеж, end date не двигается
	require.NoError(t, f.webhook(t, body, ""))

	assert.WithinDuration(t, firstEnd, *f.profile(t).SubscriptionEndDate, time.Second)
	assert.Equal(t, 1, f.mailer.Count())
}

func TestHandleWebhook_VerifyAfterWebhook(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)

	require.NoError(t, f.webhook(t, paymentWebhookBody(t, payment.EventPaymentCaptured, order.OrderID, "pay_1"), "evt_1"))
	resp, err := f.verify(t, order.OrderID, "pay_1")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Payment already verified", resp.Message)
	assert.True(t, resp.Profile.SubscriptionActive)
}

func TestHandleWebhook_OrderPaid(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)
	body := []byte(`{"event":"order.paid","payload":{"order":{"entity":{"id":"` + order.OrderID + `"}}}}`)

	require.NoError(t, f.webhook(t, body, "evt_paid"))

	assert.True(t, f.profile(t).SubscriptionActive)
	assert.Equal(t, models.PaymentStatusCompleted, f.payment(t, order.OrderID).Status)
}

func TestHandleWebhook_PaymentFailed(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)

	require.NoError(t, f.webhook(t, paymentWebhookBody(t, payment.EventPaymentFailed, order.OrderID, "pay_x"), "evt_f"))

	p := f.payment(t, order.OrderID)
	assert.Equal(t, models.PaymentStatusFailed, p.Status)
	require.NotNil(t, p.FailureReason)
	assert.Equal(t, "Card declined", *p.FailureReason)
	assert.False(t, f.profile(t).SubscriptionActive)
}

func TestHandleWebhook_FailedAfterCompletedKeepsCompleted(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)
	_, err := f.verify(t, order.OrderID, "pay_1")
	require.NoError(t, err)

	require.NoError(t, f.webhook(t, paymentWebhookBody(t, payment.EventPaymentFailed, order.OrderID, "pay_2"), "evt_late"))

	assert.Equal(t, models.PaymentStatusCompleted, f.payment(t, order.OrderID).Status)
	assert.True(t, f.profile(t).SubscriptionActive)
}

func TestHandleWebhook_UnknownOrderIsIgnored(t *testing.T) {
	f := newSubscriptionFixture(t)

	require.NoError(t, f.webhook(t, paymentWebhookBody(t, payment.EventPaymentCaptured, "order_missing", "pay_1"), "evt_u"))

	event, err := repositories.NewWebhookEventRepository().FindByEventID(f.db, "evt_u")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookEventIgnored, event.Status)
}

func TestHandleWebhook_UnknownEventType(t *testing.T) {
	f := newSubscriptionFixture(t)

	require.NoError(t, f.webhook(t, []byte(`{"event":"refund.created","payload":{}}`), "evt_r"))

	event, err := repositories.NewWebhookEventRepository().FindByEventID(f.db, "evt_r")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookEventIgnored, event.Status)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	f := newSubscriptionFixture(t)
	order := f.createOrder(t, models.PlanSemester)

	err := f.svc.HandleWebhook(context.Background(), f.db, &dto.WebhookRequest{
		Body:      paymentWebhookBody(t, payment.EventPaymentCaptured, order.OrderID, "pay_1"),
		Signature: "0000",
		EventID:   "evt_bad",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	assert.False(t, f.profile(t).SubscriptionActive)
	_, err = repositories.NewWebhookEventRepository().FindByEventID(f.db, "evt_bad")
	assert.ErrorIs(t, err, repositories.ErrWebhookEventNotFound)
}

func TestHandleWebhook_MalformedBody(t *testing.T) {
	f := newSubscriptionFixture(t)

	err := f.webhook(t, []byte(`not json`), "evt_m")

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

// ============================================
// Статус
// ============================================

func TestGetStatus(t *testing.T) {
	f := newSubscriptionFixture(t)

	status, err := f.svc.GetStatus(context.Background(), f.db, f.student.ID)
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.False(t, status.HasActive)

	order := f.createOrder(t, models.PlanSemester)
	_, err = f.verify(t, order.OrderID, "pay_1")
	require.NoError(t, err)

	status, err = f.svc.GetStatus(context.Background(), f.db, f.student.ID)
	require.NoError(t, err)
	assert.True(t, status.HasActive)

	// через 7 месяцев подписка истекла, хотя флаг еще стоит
	f.svc.now = func() time.Time { return fixedNow.AddDate(0, 7, 0) }
	status, err = f.svc.GetStatus(context.Background(), f.db, f.student.ID)
	require.NoError(t, err)
	assert.False(t, status.HasActive)
	assert.True(t, status.Profile.SubscriptionActive)
}

func TestGetStatus_NoProfile(t *testing.T) {
	f := newSubscriptionFixture(t)

	status, err := f.svc.GetStatus(context.Background(), f.db, "missing-user")

	require.NoError(t, err)
	assert.False(t, status.HasActive)
	assert.Nil(t, status.Profile)

	active, err := f.svc.HasActiveSubscription(f.db, "missing-user")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestListPayments_FilterByStatus(t *testing.T) {
	f := newSubscriptionFixture(t)
	paid := f.createOrder(t, models.PlanSemester)
	f.createOrder(t, models.PlanSemester)
	_, err := f.verify(t, paid.OrderID, "pay_1")
	require.NoError(t, err)

	resp, err := f.svc.ListPayments(f.db, repositories.PaymentFilter{Status: models.PaymentStatusCompleted, Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, paid.OrderID, resp.Payments[0].RazorpayOrderID)
}
