package workers

import (
	"context"
	"time"

	"studyhub_backend/internal/logger"
	"studyhub_backend/internal/repositories"

	"gorm.io/gorm"
)

// TokenWorker удаляет просроченные refresh токены
type TokenWorker struct {
	db       *gorm.DB
	repo     repositories.RefreshTokenRepository
	interval time.Duration
}

func NewTokenWorker(db *gorm.DB, repo repositories.RefreshTokenRepository, interval time.Duration) *TokenWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenWorker{db: db, repo: repo, interval: interval}
}

func (w *TokenWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Token worker stopped")
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()
}

func (w *TokenWorker) RunOnce(ctx context.Context) int64 {
	n, err := w.repo.DeleteExpired(w.db.WithContext(ctx), time.Now())
	if err != nil {
		logger.CtxWithError(ctx, "Error deleting expired refresh tokens", err)
		return 0
	}
	if n > 0 {
		logger.CtxInfo(ctx, "Deleted expired refresh tokens", "count", n)
	}
	return n
}
