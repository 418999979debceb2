package routes

import (
	"studyhub_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupStudentRoutes - каталог закрыт подпиской, преподаватели и админы проходят
func SetupStudentRoutes(r *gin.RouterGroup, h *handlers.AppHandlers, g Guards) {
	materials := r.Group("/materials")
	materials.Use(g.Auth, g.Subscription)
	{
		materials.GET("", h.MaterialHandler.ListMaterials)
		materials.POST("/:id/download", h.MaterialHandler.Download)
	}
}
