package routes

import (
	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/handlers"
	"studyhub_backend/internal/middleware"
	"studyhub_backend/internal/models"

	"github.com/gin-gonic/gin"
)

func SetupTeacherRoutes(r *gin.RouterGroup, h *handlers.AppHandlers, g Guards) {
	teacher := r.Group("/teacher")
	teacher.Use(g.Auth, middleware.RequireRoles(models.UserRoleTeacher, models.UserRoleAdmin))
	{
		teacher.POST("/uploads", middleware.RequirePermission(auth.PermMaterialsUpload), h.MaterialHandler.Upload)
		teacher.GET("/uploads", h.MaterialHandler.ListMyUploads)
		// владелец проверяется в сервисе
		teacher.DELETE("/uploads/:id", h.MaterialHandler.DeleteUpload)
	}
}
