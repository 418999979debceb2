package routes

import (
	"studyhub_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPublicRoutes - без AuthMiddleware
func SetupPublicRoutes(r *gin.RouterGroup, h *handlers.AppHandlers) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.AuthHandler.Signup)
		auth.POST("/login", h.AuthHandler.Login)
		auth.POST("/refresh", h.AuthHandler.RefreshToken)
		auth.POST("/logout", h.AuthHandler.Logout)
	}

	// pay сам определяет вызывающего, токен может прийти в теле
	r.POST("/pay", h.SubscriptionHandler.CreateOrder)
	// внешний вызов шлюза, проверяется подписью
	r.POST("/webhook/razorpay", h.SubscriptionHandler.Webhook)
}
