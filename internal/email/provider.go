package email

import (
	"context"

	"studyhub_backend/internal/logger"
)

// Provider определяет интерфейс для отправки email
type Provider interface {
	Send(ctx context.Context, email *Email) error
	// SendTemplate рендерит шаблон и отправляет результат как HTML
	SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error
	Validate() error
}

// TemplateRenderer определяет интерфейс для рендеринга шаблонов
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}

// LogProvider ничего не отправляет, только пишет в лог.
// Используется, когда email выключен в конфиге.
type LogProvider struct{}

func (LogProvider) Send(ctx context.Context, email *Email) error {
	logger.CtxInfo(ctx, "email disabled, message dropped", "to", email.To, "subject", email.Subject)
	return nil
}

func (LogProvider) SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error {
	logger.CtxInfo(ctx, "email disabled, message dropped", "to", to, "subject", subject, "template", templateName)
	return nil
}

func (LogProvider) Validate() error { return nil }
