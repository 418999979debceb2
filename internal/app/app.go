package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyhub_backend/database"
	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/config"
	"studyhub_backend/internal/email"
	"studyhub_backend/internal/handlers"
	"studyhub_backend/internal/logger"
	"studyhub_backend/internal/middleware"
	"studyhub_backend/internal/repositories"
	"studyhub_backend/internal/routes"
	"studyhub_backend/internal/services"
	"studyhub_backend/internal/services/payment"
	"studyhub_backend/internal/storage"
	"studyhub_backend/internal/validator"
	"studyhub_backend/internal/workers"
	"studyhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies - внешние зависимости, которые можно подменить в тестах
type Dependencies struct {
	Storage storage.Storage
	Gateway payment.Gateway
	Mailer  email.Provider
}

func Run(cfg *config.Config) error {
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		return err
	}

	deps, err := BuildDependencies(cfg)
	if err != nil {
		return err
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		// без админа сервер не запускаем
		return fmt.Errorf("failed to seed first admin user: %w", err)
	}

	ginRouter := SetupRouter(cfg, gormDB, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers.NewSubscriptionWorker(gormDB, repositories.NewProfileRepository(), 6*time.Hour).Start(ctx)
	workers.NewTokenWorker(gormDB, repositories.NewRefreshTokenRepository(), time.Hour).Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// BuildDependencies создает хранилище, шлюз и почту по конфигу
func BuildDependencies(cfg *config.Config) (*Dependencies, error) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		AccountID:  cfg.Storage.AccountID,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	gateway := payment.NewRazorpayService(payment.Config{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
	})
	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		logger.Warn("Razorpay keys are not set, /api/pay and /api/verify will answer with configuration errors")
	}
	if cfg.Razorpay.WebhookSecret == "" {
		logger.Warn("Razorpay webhook secret is not set, webhooks will be rejected")
	}

	var mailer email.Provider = email.LogProvider{}
	if cfg.Email.Enabled {
		smtp := email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			UseTLS:    cfg.Email.UseTLS,
			Timeout:   30 * time.Second,
		}, email.NewDefaultTemplateManager())
		if err := smtp.Validate(); err != nil {
			return nil, fmt.Errorf("invalid email config: %w", err)
		}
		mailer = smtp
	} else {
		logger.Warn("Email is disabled, receipts are only logged")
	}

	return &Dependencies{
		Storage: storage.WithRetry(storageInstance, cfg.Upload.SaveAttempts, 200*time.Millisecond),
		Gateway: gateway,
		Mailer:  mailer,
	}, nil
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, deps *Dependencies) *gin.Engine {
	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)
	resolver := auth.NewResolver(tokens)

	// 1. Сервисы
	serviceContainer := initializeServices(cfg, deps, tokens)

	// 2. Хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer, resolver)

	// 3. Gin
	ginRouter := initializeGinRouter(cfg, gormDB)
	if local, ok := unwrapLocal(deps.Storage); ok {
		ginRouter.Static(urlPrefix(cfg.Storage.BaseURL), local.BasePath())
	}

	// 4. Маршруты
	routes.RegisterRoutes(ginRouter, appHandlers, routes.Guards{
		Auth:         middleware.AuthMiddleware(resolver),
		Subscription: middleware.RequireSubscription(serviceContainer.SubscriptionService),
	})

	return ginRouter
}

func initializeServices(cfg *config.Config, deps *Dependencies, tokens *auth.TokenManager) *services.ServiceContainer {
	// --- Репозитории ---
	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	profileRepo := repositories.NewProfileRepository()
	paymentRepo := repositories.NewPaymentRepository()
	webhookRepo := repositories.NewWebhookEventRepository()
	uploadRepo := repositories.NewUploadRepository()

	// --- Сервисы ---
	uploadConfig := services.GetDefaultUploadConfig()
	if cfg.Upload.MaxSize > 0 {
		uploadConfig.MaxFileSize = cfg.Upload.MaxSize
	}
	if len(cfg.Upload.AllowedTypes) > 0 {
		uploadConfig.AllowedTypes = cfg.Upload.AllowedTypes
	}
	uploadConfig.AutoApprove = cfg.Upload.AutoApprove

	authService := services.NewAuthService(userRepo, profileRepo, refreshTokenRepo, tokens,
		time.Duration(cfg.JWT.RefreshTTL)*time.Hour)
	profileService := services.NewProfileService(profileRepo, userRepo, refreshTokenRepo)
	subscriptionService := services.NewSubscriptionService(paymentRepo, profileRepo, userRepo, webhookRepo,
		deps.Gateway, deps.Mailer, services.SubscriptionConfig{
			Currency:       cfg.Razorpay.Currency,
			SemesterAmount: cfg.Razorpay.SemesterAmount,
			AnnualAmount:   cfg.Razorpay.AnnualAmount,
		})
	uploadService := services.NewUploadService(uploadRepo, profileRepo, deps.Storage, uploadConfig)

	return &services.ServiceContainer{
		AuthService:         authService,
		ProfileService:      profileService,
		SubscriptionService: subscriptionService,
		UploadService:       uploadService,
		EmailService:        deps.Mailer,
		Gateway:             deps.Gateway,
	}
}

func initializeHandlers(cfg *config.Config, s *services.ServiceContainer, resolver *auth.Resolver) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, s.AuthService, cfg.Server.CookieSecure),
		ProfileHandler:      handlers.NewProfileHandler(baseHandler, s.ProfileService, cfg.Server.CookieSecure),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, s.SubscriptionService, resolver),
		MaterialHandler:     handlers.NewMaterialHandler(baseHandler, s.UploadService),
		AdminHandler:        handlers.NewAdminHandler(baseHandler, s.AuthService, s.UploadService, s.SubscriptionService),
		HealthHandler:       handlers.NewHealthHandler(baseHandler),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.Upload.MaxSize > 0 {
		// запас под поля multipart формы
		router.Use(middleware.BodyLimit(cfg.Upload.MaxSize + 1<<20))
	}
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.FirstAdmin.Email == "" || cfg.FirstAdmin.Password == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	authService := services.NewAuthService(
		repositories.NewUserRepository(),
		repositories.NewProfileRepository(),
		repositories.NewRefreshTokenRepository(),
		auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute),
		0,
	)
	created, err := authService.SeedAdmin(context.Background(), db, cfg.FirstAdmin.Email, cfg.FirstAdmin.Password, cfg.FirstAdmin.Name)
	if err != nil {
		return err
	}
	if !created {
		logger.Info("Admin user already exists. Skipping creation.", "email", cfg.FirstAdmin.Email)
	}
	return nil
}

// SeedAdmin - то же, что при старте, для команды CLI
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	return seedFirstAdmin(db, cfg)
}

func unwrapLocal(s storage.Storage) (*storage.LocalStorage, bool) {
	if r, ok := s.(*storage.RetryingStorage); ok {
		s = r.Storage
	}
	local, ok := s.(*storage.LocalStorage)
	return local, ok
}

// urlPrefix - путь раздачи локальных файлов, абсолютный BaseURL не годится
func urlPrefix(baseURL string) string {
	if baseURL == "" || baseURL[0] != '/' {
		return "/files"
	}
	return baseURL
}
