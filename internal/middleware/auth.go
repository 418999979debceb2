package middleware

import (
	"errors"

	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/logger"
	"studyhub_backend/internal/models"
	"studyhub_backend/pkg/apperrors"
	"studyhub_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware - вызывающий определяется резолвером (заголовок, затем cookie)
func AuthMiddleware(resolver *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.Resolve(c, "")
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrNoCredentials) {
				message = "Authorization header missing or invalid"
			}
			apperrors.HandleError(c, apperrors.NewUnauthorizedError(message))
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

// SetIdentity сохраняет вызывающего в контекст gin и в контекст логгера
func SetIdentity(c *gin.Context, identity *auth.Identity) {
	c.Set(contextkeys.UserIDKey, identity.UserID)
	c.Set(contextkeys.RoleKey, identity.Role)
	c.Set(contextkeys.EmailKey, identity.Email)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), identity.UserID))
}

// RequireRoles - middleware для проверки нескольких возможных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}
		if !roleSet[models.UserRole(role)] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// RequirePermission - проверка по таблице разрешений ролей
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.HasPermission(GetRole(c), permission) {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

// GetRole извлекает роль из контекста
func GetRole(c *gin.Context) string {
	return c.GetString(contextkeys.RoleKey)
}
