package handlers

import (
	"net/http"

	"studyhub_backend/internal/models"
	"studyhub_backend/internal/repositories"
	"studyhub_backend/internal/services"
	"studyhub_backend/internal/services/dto"
	"studyhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	*BaseHandler
	authService         services.AuthService
	uploadService       services.UploadService
	subscriptionService services.SubscriptionService
}

func NewAdminHandler(
	base *BaseHandler,
	authService services.AuthService,
	uploadService services.UploadService,
	subscriptionService services.SubscriptionService,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:         base,
		authService:         authService,
		uploadService:       uploadService,
		subscriptionService: subscriptionService,
	}
}

// @Summary Сменить роль пользователя
// @Tags admin
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param request body dto.UpdateRoleRequest true "Новая роль"
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.SetRole(c.Request.Context(), h.GetDB(c), adminID, c.Param("id"), req.Role); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// @Summary Материалы на модерации
// @Tags admin
// @Security BearerAuth
// @Param status query string false "Pending, Approved, Rejected"
// @Success 200 {object} dto.MaterialListResponse
// @Router /admin/uploads [get]
func (h *AdminHandler) ListUploads(c *gin.Context) {
	var query dto.MaterialListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Page, query.PageSize = ParsePagination(c)

	resp, err := h.uploadService.ListForModeration(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Сменить статус материала
// @Tags admin
// @Security BearerAuth
// @Param id path string true "ID материала"
// @Param request body dto.UpdateUploadStatusRequest true "Статус"
// @Success 200 {object} models.TeacherUpload
// @Router /admin/uploads/{id}/status [put]
func (h *AdminHandler) UpdateUploadStatus(c *gin.Context) {
	var req dto.UpdateUploadStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	upload, err := h.uploadService.UpdateStatus(c.Request.Context(), h.GetDB(c), c.Param("id"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, upload)
}

// @Summary Журнал платежей
// @Tags admin
// @Security BearerAuth
// @Param status query string false "created, completed, failed"
// @Success 200 {object} dto.PaymentListResponse
// @Router /admin/payments [get]
func (h *AdminHandler) ListPayments(c *gin.Context) {
	status := models.PaymentStatus(c.Query("status"))
	switch status {
	case "", models.PaymentStatusCreated, models.PaymentStatusCompleted, models.PaymentStatusFailed:
	default:
		apperrors.HandleError(c, apperrors.ValidationError(map[string]string{"status": "Unknown payment status"}))
		return
	}

	page, pageSize := ParsePagination(c)
	resp, err := h.subscriptionService.ListPayments(h.GetDB(c), repositories.PaymentFilter{
		Status:   status,
		UserID:   c.Query("user_id"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
