package routes

import (
	"studyhub_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupCommonRoutes - любая авторизованная роль
func SetupCommonRoutes(r *gin.RouterGroup, h *handlers.AppHandlers, g Guards) {
	authed := r.Group("")
	authed.Use(g.Auth)
	{
		authed.GET("/auth/me", h.AuthHandler.Me)

		authed.POST("/verify", h.SubscriptionHandler.VerifyPayment)
		authed.GET("/subscription/status", h.SubscriptionHandler.GetStatus)

		authed.GET("/profile", h.ProfileHandler.GetProfile)
		authed.PUT("/profile", h.ProfileHandler.UpdateProfile)
		authed.DELETE("/profile", h.ProfileHandler.DeleteAccount)
		authed.GET("/profile/redirect", h.ProfileHandler.Redirect)
	}
}
