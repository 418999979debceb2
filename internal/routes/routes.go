package routes

import (
	"studyhub_backend/internal/handlers"
	"studyhub_backend/internal/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Guards - middleware доступа, собранные в app
type Guards struct {
	Auth         gin.HandlerFunc
	Subscription gin.HandlerFunc
}

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	guards Guards,
) {
	ginRouter.GET("/health", appHandlers.HealthHandler.Health)
	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := ginRouter.Group("/api")
	{
		SetupPublicRoutes(api, appHandlers)
		SetupCommonRoutes(api, appHandlers, guards)
		SetupStudentRoutes(api, appHandlers, guards)
		SetupTeacherRoutes(api, appHandlers, guards)
		SetupAdminRoutes(api, appHandlers, guards)
	}

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
