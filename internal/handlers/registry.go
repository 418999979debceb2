package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	ProfileHandler      *ProfileHandler
	SubscriptionHandler *SubscriptionHandler
	MaterialHandler     *MaterialHandler
	AdminHandler        *AdminHandler
	HealthHandler       *HealthHandler
}
