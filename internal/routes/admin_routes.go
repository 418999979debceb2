package routes

import (
	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/handlers"
	"studyhub_backend/internal/middleware"
	"studyhub_backend/internal/models"

	"github.com/gin-gonic/gin"
)

func SetupAdminRoutes(r *gin.RouterGroup, h *handlers.AppHandlers, g Guards) {
	admin := r.Group("/admin")
	admin.Use(g.Auth, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.PUT("/users/:id/role", middleware.RequirePermission(auth.PermUsersManage), h.AdminHandler.UpdateRole)

		admin.GET("/uploads", middleware.RequirePermission(auth.PermMaterialsModerate), h.AdminHandler.ListUploads)
		admin.PUT("/uploads/:id/status", middleware.RequirePermission(auth.PermMaterialsModerate), h.AdminHandler.UpdateUploadStatus)

		admin.GET("/payments", middleware.RequirePermission(auth.PermPaymentsRead), h.AdminHandler.ListPayments)
	}
}
