package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotFound - объекта нет в хранилище
var ErrNotFound = errors.New("object not found")

// Storage - операции с файлами учебных материалов
type Storage interface {
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	GetURL(ctx context.Context, path string) (string, error)
	// GetSignedURL - временная ссылка на приватный объект
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
	GetSize(ctx context.Context, path string) (int64, error)
}

type Config struct {
	Type       string // local, s3, cloudflare_r2
	BasePath   string
	BaseURL    string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	AccountID  string // R2: endpoint строится из него, если Endpoint пуст
	PublicRead bool
}

// NewStorage создает хранилище по типу из конфига
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
