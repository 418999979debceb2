package handlers

import (
	"net/http"

	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/services"
	"studyhub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
	cookieSecure   bool
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService, cookieSecure bool) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
		cookieSecure:   cookieSecure,
	}
}

// @Summary Профиль текущего пользователя
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Profile
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Обновить академические данные
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Поля профиля"
// @Success 200 {object} models.Profile
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Удалить аккаунт
// @Tags profile
// @Security BearerAuth
// @Router /profile [delete]
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.profileService.DeleteAccount(c.Request.Context(), h.GetDB(c), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.SetCookie(auth.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// @Summary Путь дашборда
// @Tags profile
// @Security BearerAuth
// @Success 200 {object} dto.RedirectResponse
// @Router /profile/redirect [get]
func (h *ProfileHandler) Redirect(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.profileService.ResolveRedirect(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
