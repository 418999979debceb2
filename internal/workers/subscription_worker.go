package workers

import (
	"context"
	"time"

	"studyhub_backend/internal/logger"
	"studyhub_backend/internal/repositories"

	"gorm.io/gorm"
)

// SubscriptionWorker снимает флаг subscription_active с истекших профилей.
// Доступ и так считается по дате окончания, флаг чистится для отчетов и админки.
type SubscriptionWorker struct {
	db          *gorm.DB
	profileRepo repositories.ProfileRepository
	interval    time.Duration
	now         func() time.Time
}

func NewSubscriptionWorker(db *gorm.DB, profileRepo repositories.ProfileRepository, interval time.Duration) *SubscriptionWorker {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &SubscriptionWorker{db: db, profileRepo: profileRepo, interval: interval, now: time.Now}
}

// Start запускает фоновую проверку, останавливается по ctx
func (w *SubscriptionWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Subscription worker stopped")
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce - один проход, возвращает число снятых флагов
func (w *SubscriptionWorker) RunOnce(ctx context.Context) int64 {
	n, err := w.profileRepo.ExpireSubscriptions(w.db.WithContext(ctx), w.now().UTC())
	if err != nil {
		logger.CtxWithError(ctx, "Error expiring subscriptions", err)
		return 0
	}
	if n > 0 {
		logger.CtxInfo(ctx, "Marked subscriptions as expired", "count", n)
	}
	return n
}
