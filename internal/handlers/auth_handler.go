package handlers

import (
	"net/http"
	"time"

	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/services"
	"studyhub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService  services.AuthService
	cookieSecure bool
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  base,
		authService:  authService,
		cookieSecure: cookieSecure,
	}
}

// Signup godoc
// @Summary Регистрация студента
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Данные регистрации"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setAccessCookie(c, resp)
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Вход
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Email и пароль"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setAccessCookie(c, resp)
	c.JSON(http.StatusOK, resp)
}

// @Summary Обновить access токен
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh токен"
// @Success 200 {object} dto.AuthResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), h.GetDB(c), req.RefreshToken)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setAccessCookie(c, resp)
	c.JSON(http.StatusOK, resp)
}

// @Summary Выход
// @Tags auth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	// тело необязательно
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.Logout(c.Request.Context(), h.GetDB(c), req.RefreshToken); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.clearAccessCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// @Summary Текущий пользователь
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} dto.UserDTO
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setAccessCookie(c *gin.Context, resp *dto.AuthResponse) {
	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	if maxAge <= 0 {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AccessTokenCookie, resp.AccessToken, maxAge, "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearAccessCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)
}
