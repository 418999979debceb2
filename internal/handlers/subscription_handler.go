package handlers

import (
	"errors"
	"io"
	"net/http"

	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/logger"
	"studyhub_backend/internal/middleware"
	"studyhub_backend/internal/services"
	"studyhub_backend/internal/services/dto"
	"studyhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// webhookBodyLimit - тело вебхука больше этого не принимается
const webhookBodyLimit = 1 << 20

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
	resolver            *auth.Resolver
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService, resolver *auth.Resolver) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
		resolver:            resolver,
	}
}

// CreateOrder godoc
// @Summary Создать заказ на подписку
// @Description Токен берется из заголовка Authorization, затем из cookie, затем из поля access_token тела.
// @Tags subscription
// @Accept json
// @Produce json
// @Param request body dto.CreateOrderRequest false "План и сумма"
// @Success 200 {object} dto.CreateOrderResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse "Шлюз не настроен"
// @Failure 502 {object} apperrors.ErrorResponse "Ошибка шлюза"
// @Router /pay [post]
func (h *SubscriptionHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
			return
		}
	}

	identity, err := h.resolver.Resolve(c, req.AccessToken)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "pay request without valid credentials", "error", err)
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
		return
	}
	middleware.SetIdentity(c, identity)

	if !h.validate(c, &req) {
		return
	}

	resp, err := h.subscriptionService.CreateOrder(c.Request.Context(), h.GetDB(c), identity.UserID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyPayment godoc
// @Summary Подтвердить оплату
// @Tags subscription
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.VerifyPaymentRequest true "Ответ checkout"
// @Success 200 {object} dto.VerifyPaymentResponse
// @Failure 400 {object} apperrors.ErrorResponse "Неверная подпись"
// @Failure 404 {object} apperrors.ErrorResponse "Заказ не найден"
// @Router /verify [post]
func (h *SubscriptionHandler) VerifyPayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.VerifyPaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.subscriptionService.VerifyPayment(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStatus godoc
// @Summary Статус подписки
// @Tags subscription
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SubscriptionStatusResponse
// @Router /subscription/status [get]
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.subscriptionService.GetStatus(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Webhook godoc
// @Summary Вебхук Razorpay
// @Description Без авторизации, подлинность проверяется по X-Razorpay-Signature.
// @Tags subscription
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /webhook/razorpay [post]
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apperrors.HandleError(c, apperrors.New(apperrors.CodeLimitExceeded, "webhook", "Payload too large", http.StatusRequestEntityTooLarge))
			return
		}
		apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read request body"))
		return
	}

	req := &dto.WebhookRequest{
		Body:      body,
		Signature: c.GetHeader("X-Razorpay-Signature"),
		EventID:   c.GetHeader("X-Razorpay-Event-Id"),
	}

	if err := h.subscriptionService.HandleWebhook(c.Request.Context(), h.GetDB(c), req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
