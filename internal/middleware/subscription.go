package middleware

import (
	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/logger"
	"studyhub_backend/pkg/apperrors"
	"studyhub_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SubscriptionChecker - то, что нужно гейту от сервиса подписок
type SubscriptionChecker interface {
	HasActiveSubscription(db *gorm.DB, userID string) (bool, error)
}

// RequireSubscription пропускает студента только с активной подпиской.
// Преподаватели и админы проходят без проверки.
// Должен стоять после AuthMiddleware и DBMiddleware.
func RequireSubscription(checker SubscriptionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.BypassesSubscription(GetRole(c)) {
			c.Next()
			return
		}

		userID := GetUserID(c)
		if userID == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}

		val, _ := c.Get(string(contextkeys.DBContextKey))
		db, ok := val.(*gorm.DB)
		if !ok {
			apperrors.HandleError(c, apperrors.NewConfigurationError("server", "Database is not available"))
			return
		}

		active, err := checker.HasActiveSubscription(db, userID)
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "subscription check failed", err)
			apperrors.HandleError(c, err)
			return
		}
		if !active {
			apperrors.HandleError(c, apperrors.ErrSubscriptionRequired)
			return
		}

		c.Next()
	}
}
