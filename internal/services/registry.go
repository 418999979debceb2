package services

import (
	"studyhub_backend/internal/email"
	"studyhub_backend/internal/services/payment"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	ProfileService      ProfileService
	SubscriptionService SubscriptionService
	UploadService       UploadService
	EmailService        email.Provider
	Gateway             payment.Gateway
}
