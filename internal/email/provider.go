package email

import "context"

// Provider отправляет письма
type Provider interface {
	Send(ctx context.Context, email *Email) error
}

// TemplateRenderer рендерит HTML шаблоны писем
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
}
