package mailer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklyhq/bookly/mailer"
)

// captureTransport records delivered messages and optionally fails.
type captureTransport struct {
	name     string
	err      error
	messages []mailer.Message
}

func (c *captureTransport) Name() string { return c.name }

func (c *captureTransport) Send(_ context.Context, msg mailer.Message) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, msg)
	return nil
}

func TestService_SendAccountVerification(t *testing.T) {
	primary := &captureTransport{name: "capture"}

	svc, err := mailer.NewService(primary)
	require.NoError(t, err)

	err = svc.SendAccountVerification(context.Background(), "reader@example.com", "https://bookly.test/verify/tok")
	require.NoError(t, err)

	require.Len(t, primary.messages, 1)
	msg := primary.messages[0]

	assert.Equal(t, "reader@example.com", msg.To)
	assert.Equal(t, "Verify your email", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "https://bookly.test/verify/tok")
}

func TestService_SendPasswordReset(t *testing.T) {
	primary := &captureTransport{name: "capture"}

	svc, err := mailer.NewService(primary)
	require.NoError(t, err)

	err = svc.SendPasswordReset(context.Background(), "reader@example.com", "https://bookly.test/reset/tok")
	require.NoError(t, err)

	require.Len(t, primary.messages, 1)
	msg := primary.messages[0]

	assert.Equal(t, "Reset your password", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "https://bookly.test/reset/tok")
}

func TestService_FallsBackWhenPrimaryFails(t *testing.T) {
	primary := &captureTransport{name: "broken", err: errors.New("provider down")}
	fallback := &captureTransport{name: "backup"}

	svc, err := mailer.NewService(primary, mailer.WithFallback(fallback))
	require.NoError(t, err)

	err = svc.SendAccountVerification(context.Background(), "reader@example.com", "https://bookly.test/verify/tok")
	require.NoError(t, err)

	assert.Empty(t, primary.messages)
	require.Len(t, fallback.messages, 1)
	assert.Equal(t, "reader@example.com", fallback.messages[0].To)
}

func TestService_ReturnsErrorWithoutFallback(t *testing.T) {
	primary := &captureTransport{name: "broken", err: errors.New("provider down")}

	svc, err := mailer.NewService(primary)
	require.NoError(t, err)

	err = svc.SendAccountVerification(context.Background(), "reader@example.com", "https://bookly.test/verify/tok")
	assert.Error(t, err)
}

func TestBrevoTransport_Send(t *testing.T) {
	type received struct {
		apiKey string
		body   map[string]any
	}

	t.Run("posts the message to the API", func(t *testing.T) {
		got := make(chan received, 1)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			got <- received{apiKey: r.Header.Get("api-key"), body: body}
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		transport := mailer.NewBrevoTransport(mailer.BrevoConfig{
			APIKey:     "test-key",
			SenderName: "Bookly",
			SenderMail: "no-reply@bookly.test",
			Endpoint:   srv.URL,
			Timeout:    2 * time.Second,
		})

		err := transport.Send(context.Background(), mailer.Message{
			To:       "reader@example.com",
			Subject:  "Hello",
			HTMLBody: "<p>Hi</p>",
		})
		require.NoError(t, err)

		r := <-got
		assert.Equal(t, "test-key", r.apiKey)
		assert.Equal(t, "Hello", r.body["subject"])
		assert.Equal(t, "<p>Hi</p>", r.body["htmlContent"])

		sender := r.body["sender"].(map[string]any)
		assert.Equal(t, "no-reply@bookly.test", sender["email"])

		to := r.body["to"].([]any)
		require.Len(t, to, 1)
		assert.Equal(t, "reader@example.com", to[0].(map[string]any)["email"])
	})

	t.Run("treats non-2xx as failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		transport := mailer.NewBrevoTransport(mailer.BrevoConfig{
			APIKey:   "bad-key",
			Endpoint: srv.URL,
		})

		err := transport.Send(context.Background(), mailer.Message{To: "reader@example.com"})
		assert.Error(t, err)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer srv.Close()

		transport := mailer.NewBrevoTransport(mailer.BrevoConfig{Endpoint: srv.URL})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := transport.Send(ctx, mailer.Message{To: "reader@example.com"})
		assert.Error(t, err)
	})
}
