package email

import (
	"context"
	"sync"

	"mehndi_backend/internal/logger"
)

// MockProvider не отправляет письма, а пишет их в лог и запоминает
type MockProvider struct {
	mu   sync.Mutex
	sent []Email
	// Err - если задан, Send возвращает эту ошибку
	Err error
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Send(ctx context.Context, email *Email) error {
	if p.Err != nil {
		return p.Err
	}
	logger.CtxDebug(ctx, "Email suppressed", "to", email.To, "subject", email.Subject)

	p.mu.Lock()
	p.sent = append(p.sent, *email)
	p.mu.Unlock()
	return nil
}

// Sent возвращает копию отправленных писем
func (p *MockProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Email, len(p.sent))
	copy(out, p.sent)
	return out
}
