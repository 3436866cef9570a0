package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoConfig configures the Brevo transactional email API transport.
type BrevoConfig struct {
	APIKey     string
	SenderName string
	SenderMail string
	Endpoint   string
	Timeout    time.Duration
}

type brevoTransport struct {
	cfg    BrevoConfig
	client *http.Client
}

// NewBrevoTransport builds the HTTP transport for the Brevo API.
func NewBrevoTransport(cfg BrevoConfig) Transport {
	if cfg.Endpoint == "" {
		cfg.Endpoint = brevoEndpoint
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &brevoTransport{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (t *brevoTransport) Name() string {
	return "brevo"
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoPayload struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (t *brevoTransport) Send(ctx context.Context, msg Message) error {
	payload := brevoPayload{
		Sender: brevoAddress{
			Name:  t.cfg.SenderName,
			Email: t.cfg.SenderMail,
		},
		To:          []brevoAddress{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode mail payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build mail request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", t.cfg.APIKey)

	res, err := t.client.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "mail request failed")
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return goerrors.New(
			fmt.Sprintf("mail provider returned %d", res.StatusCode),
			goerrors.CategoryOperation,
		).WithMetadata(map[string]any{
			"status": res.StatusCode,
			"body":   string(snippet),
		})
	}

	return nil
}
