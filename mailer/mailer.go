// Package mailer delivers transactional account email. A primary HTTP
// transport (Brevo) is tried first; on failure the message falls through to a
// plain SMTP transport so that a provider outage never breaks signup.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"net/http"

	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"

	"github.com/booklyhq/bookly/auth"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Message is a rendered email ready for a transport.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Transport delivers a single message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// Service renders and sends account lifecycle email. It satisfies
// auth.MailSender.
type Service struct {
	primary  Transport
	fallback Transport
	engine   *django.Engine
	logger   auth.Logger
}

var _ auth.MailSender = (*Service)(nil)

type Option func(*Service)

func WithFallback(t Transport) Option {
	return func(s *Service) {
		s.fallback = t
	}
}

func WithLogger(l auth.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(primary Transport, opts ...Option) (*Service, error) {
	engine := django.NewPathForwardingFileSystem(http.FS(templatesFS), "/templates", ".html")
	if err := engine.Load(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load mail templates")
	}

	svc := &Service{
		primary: primary,
		engine:  engine,
		logger:  noopLogger{},
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

func (s *Service) SendAccountVerification(ctx context.Context, email, link string) error {
	body, err := s.render("verification", map[string]any{
		"link": link,
	})
	if err != nil {
		return err
	}

	return s.deliver(ctx, Message{
		To:       email,
		Subject:  "Verify your email",
		HTMLBody: body,
	})
}

func (s *Service) SendPasswordReset(ctx context.Context, email, link string) error {
	body, err := s.render("password_reset", map[string]any{
		"link": link,
	})
	if err != nil {
		return err
	}

	return s.deliver(ctx, Message{
		To:       email,
		Subject:  "Reset your password",
		HTMLBody: body,
	})
}

func (s *Service) render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := s.engine.Render(&buf, name, data); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render mail template").
			WithMetadata(map[string]any{
				"template": name,
			})
	}
	return buf.String(), nil
}

// deliver tries the primary transport and falls back when it fails. Only the
// terminal failure is returned.
func (s *Service) deliver(ctx context.Context, msg Message) error {
	err := s.primary.Send(ctx, msg)
	if err == nil {
		return nil
	}

	if s.fallback == nil {
		return err
	}

	s.logger.Warn("mail transport %s failed, falling back to %s: %s",
		s.primary.Name(), s.fallback.Name(), err)

	return s.fallback.Send(ctx, msg)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
