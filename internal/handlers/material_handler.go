package handlers

import (
	"net/http"

	"studyhub_backend/internal/middleware"
	"studyhub_backend/internal/services"
	"studyhub_backend/internal/services/dto"
	"studyhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type MaterialHandler struct {
	*BaseHandler
	uploadService services.UploadService
}

func NewMaterialHandler(base *BaseHandler, uploadService services.UploadService) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler:   base,
		uploadService: uploadService,
	}
}

// @Summary Каталог материалов
// @Description Только одобренные материалы. Студенту нужна активная подписка.
// @Tags materials
// @Security BearerAuth
// @Produce json
// @Param year query int false "Курс"
// @Param semester query int false "Семестр"
// @Param subject query string false "Предмет"
// @Param type query string false "Notes или Assignment"
// @Success 200 {object} dto.MaterialListResponse
// @Failure 402 {object} apperrors.ErrorResponse
// @Router /materials [get]
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	var query dto.MaterialListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Page, query.PageSize = ParsePagination(c)

	resp, err := h.uploadService.ListMaterials(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Ссылка на скачивание
// @Tags materials
// @Security BearerAuth
// @Param id path string true "ID материала"
// @Success 200 {object} dto.DownloadResponse
// @Router /materials/{id}/download [post]
func (h *MaterialHandler) Download(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.uploadService.Download(c.Request.Context(), h.GetDB(c), userID, middleware.GetRole(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Загрузить материал
// @Tags teacher
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл"
// @Param title formData string true "Название"
// @Param year formData int true "Курс"
// @Param subject formData string true "Предмет"
// @Param type formData string true "Notes или Assignment"
// @Success 201 {object} models.TeacherUpload
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /teacher/uploads [post]
func (h *MaterialHandler) Upload(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.MaterialUploadRequest
	if !h.BindAndValidate_Form(c, &req) {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.ValidationError(map[string]string{"file": "File is required"}))
		return
	}
	req.File = file
	req.UploaderID = userID

	upload, err := h.uploadService.UploadMaterial(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, upload)
}

// @Summary Мои загрузки
// @Tags teacher
// @Security BearerAuth
// @Success 200 {object} dto.MaterialListResponse
// @Router /teacher/uploads [get]
func (h *MaterialHandler) ListMyUploads(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var query dto.MaterialListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Page, query.PageSize = ParsePagination(c)

	resp, err := h.uploadService.ListTeacherUploads(h.GetDB(c), userID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Удалить материал
// @Description Владелец или админ
// @Tags teacher
// @Security BearerAuth
// @Param id path string true "ID материала"
// @Router /teacher/uploads/{id} [delete]
func (h *MaterialHandler) DeleteUpload(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	err := h.uploadService.DeleteUpload(c.Request.Context(), h.GetDB(c), userID, middleware.GetRole(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Material deleted"})
}
