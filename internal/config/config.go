package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host           string   `yaml:"host"`
		Port           int      `yaml:"port"`
		Env            string   `yaml:"env"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		CookieSecure   bool     `yaml:"cookie_secure"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres, mysql, sqlite
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret     string `yaml:"secret"`
		TTL        int    `yaml:"ttl"`         // минуты
		RefreshTTL int    `yaml:"refresh_ttl"` // часы
	} `yaml:"jwt"`

	Razorpay struct {
		KeyID          string `yaml:"key_id"`
		KeySecret      string `yaml:"key_secret"`
		WebhookSecret  string `yaml:"webhook_secret"`
		Currency       string `yaml:"currency"`
		SemesterAmount int64  `yaml:"semester_amount"` // в пайсах
		AnnualAmount   int64  `yaml:"annual_amount"`
	} `yaml:"razorpay"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
		Enabled      bool   `yaml:"enabled"`
	} `yaml:"email"`

	Storage struct {
		Type       string `yaml:"type"`      // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path"` // для local
		BaseURL    string `yaml:"base_url"`
		Bucket     string `yaml:"bucket"`
		Region     string `yaml:"region"`
		AccessKey  string `yaml:"access_key"`
		SecretKey  string `yaml:"secret_key"`
		Endpoint   string `yaml:"endpoint"`
		AccountID  string `yaml:"account_id"` // для R2
		PublicRead bool   `yaml:"public_read"`
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size"`
		AllowedTypes []string `yaml:"allowed_types"`
		AutoApprove  bool     `yaml:"auto_approve"`
		SaveAttempts int      `yaml:"save_attempts"`
	} `yaml:"upload"`

	FirstAdmin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"first_admin"`
}

// IsDevelopment - текстовые логи, подробные ошибки
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Env, "development")
}

var AppConfig *Config

// Default возвращает конфигурацию со значениями по умолчанию. Секреты пустые.
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"
	cfg.Server.AllowedOrigins = []string{"*"}

	cfg.Database.Driver = "postgres"

	cfg.JWT.TTL = 60
	cfg.JWT.RefreshTTL = 24 * 30

	cfg.Razorpay.Currency = "INR"
	cfg.Razorpay.SemesterAmount = 49900
	cfg.Razorpay.AnnualAmount = 89900

	cfg.Email.SMTPPort = 587
	cfg.Email.FromName = "StudyHub"
	cfg.Email.UseTLS = true

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/files"

	cfg.Upload.MaxSize = MaterialFileConfig.MaxSize
	cfg.Upload.AllowedTypes = append([]string(nil), MaterialFileConfig.AllowedTypes...)
	cfg.Upload.AutoApprove = true
	cfg.Upload.SaveAttempts = 3

	cfg.FirstAdmin.Name = "Administrator"

	return &cfg
}

// Load читает .env (если есть), YAML-файл (если есть) и переменные окружения.
// Переменные окружения имеют приоритет над файлом.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.yaml"
	}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
		}
	case os.IsNotExist(err):
		log.Printf("config file %s not found, using defaults and environment", path)
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig загружает глобальную конфигурацию или завершает процесс
func LoadConfig() {
	cfg, err := Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// ============================================================================
// Переменные окружения
// ============================================================================

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SERVER_HOST":             &cfg.Server.Host,
		"SERVER_ENV":              &cfg.Server.Env,
		"DATABASE_DRIVER":         &cfg.Database.Driver,
		"DATABASE_URL":            &cfg.Database.DSN,
		"JWT_SECRET":              &cfg.JWT.Secret,
		"RAZORPAY_KEY_ID":         &cfg.Razorpay.KeyID,
		"RAZORPAY_KEY_SECRET":     &cfg.Razorpay.KeySecret,
		"RAZORPAY_WEBHOOK_SECRET": &cfg.Razorpay.WebhookSecret,
		"RAZORPAY_CURRENCY":       &cfg.Razorpay.Currency,
		"STORAGE_TYPE":            &cfg.Storage.Type,
		"STORAGE_BASE_PATH":       &cfg.Storage.BasePath,
		"STORAGE_BASE_URL":        &cfg.Storage.BaseURL,
		"STORAGE_BUCKET":          &cfg.Storage.Bucket,
		"STORAGE_REGION":          &cfg.Storage.Region,
		"STORAGE_ACCESS_KEY":      &cfg.Storage.AccessKey,
		"STORAGE_SECRET_KEY":      &cfg.Storage.SecretKey,
		"STORAGE_ENDPOINT":        &cfg.Storage.Endpoint,
		"STORAGE_ACCOUNT_ID":      &cfg.Storage.AccountID,
		"SMTP_HOST":               &cfg.Email.SMTPHost,
		"SMTP_USER":               &cfg.Email.SMTPUsername,
		"SMTP_PASSWORD":           &cfg.Email.SMTPPassword,
		"SMTP_FROM":               &cfg.Email.FromEmail,
		"FIRST_ADMIN_EMAIL":       &cfg.FirstAdmin.Email,
		"FIRST_ADMIN_PASSWORD":    &cfg.FirstAdmin.Password,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SERVER_PORT": &cfg.Server.Port,
		"SMTP_PORT":   &cfg.Email.SMTPPort,
		"JWT_TTL":     &cfg.JWT.TTL,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	amounts := map[string]*int64{
		"RAZORPAY_SEMESTER_AMOUNT": &cfg.Razorpay.SemesterAmount,
		"RAZORPAY_ANNUAL_AMOUNT":   &cfg.Razorpay.AnnualAmount,
		"UPLOAD_MAX_SIZE":          &cfg.Upload.MaxSize,
	}
	for key, dst := range amounts {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"EMAIL_ENABLED":       &cfg.Email.Enabled,
		"UPLOAD_AUTO_APPROVE": &cfg.Upload.AutoApprove,
		"COOKIE_SECURE":       &cfg.Server.CookieSecure,
	}
	for key, dst := range bools {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
	}

	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok && v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}

	return nil
}
