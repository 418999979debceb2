package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"studyhub_backend/internal/logger"
)

// RetryingStorage повторяет Save при ошибке хранилища.
// Остальные операции проксируются без повторов.
type RetryingStorage struct {
	Storage
	attempts int
	backoff  time.Duration
}

// WithRetry оборачивает хранилище: attempts попыток, пауза растет линейно (backoff, 2*backoff, ...)
func WithRetry(s Storage, attempts int, backoff time.Duration) *RetryingStorage {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingStorage{Storage: s, attempts: attempts, backoff: backoff}
}

// Save буферизует поток, если он не поддерживает Seek,
// чтобы каждую попытку можно было начать сначала
func (r *RetryingStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	if r.attempts == 1 {
		return r.Storage.Save(ctx, path, reader, contentType)
	}

	rs, ok := reader.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("failed to buffer upload: %w", err)
		}
		rs = bytes.NewReader(data)
	}
	return r.saveSeekable(ctx, path, rs, contentType)
}

func (r *RetryingStorage) saveSeekable(ctx context.Context, path string, rs io.ReadSeeker, contentType string) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to rewind upload: %w", err)
		}
		if lastErr = r.Storage.Save(ctx, path, rs, contentType); lastErr == nil {
			return nil
		}
		if !r.wait(ctx, path, attempt, lastErr) {
			break
		}
	}
	return lastErr
}

// wait возвращает false, если попыток больше нет или контекст отменен
func (r *RetryingStorage) wait(ctx context.Context, path string, attempt int, err error) bool {
	if attempt >= r.attempts {
		return false
	}
	logger.CtxWarn(ctx, "storage save failed, retrying",
		"path", path,
		"attempt", attempt,
		"error", err.Error(),
	)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Duration(attempt) * r.backoff):
		return true
	}
}
