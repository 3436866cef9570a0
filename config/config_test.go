package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklyhq/bookly/auth"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "bookly", cfg.Issuer)
	assert.Equal(t, []string{"bookly"}, cfg.Audience)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.VerificationTokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.PasswordResetTokenTTL)
	assert.Equal(t, "starttls", cfg.SMTPSecurity)
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	t.Setenv("BOOKLY_HTTP_ADDR", ":9000")
	t.Setenv("BOOKLY_JWT_SECRET", "env-secret")
	t.Setenv("BOOKLY_JWT_AUDIENCE", "bookly, mobile ,")
	t.Setenv("BOOKLY_DOMAIN", "bookly.example.com")
	t.Setenv("BOOKLY_DETERMINISTIC_IDS", "true")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "env-secret", cfg.SigningKey)
	assert.Equal(t, []string{"bookly", "mobile"}, cfg.Audience)
	assert.Equal(t, "bookly.example.com", cfg.Domain)
	assert.True(t, cfg.DeterministicIDs)
}

func TestBoolOverlay(t *testing.T) {
	t.Run("defaults to off", func(t *testing.T) {
		assert.False(t, Load().DeterministicIDs)
	})

	t.Run("garbage keeps the default", func(t *testing.T) {
		t.Setenv("BOOKLY_DETERMINISTIC_IDS", "yep")
		assert.False(t, Load().DeterministicIDs)
	})
}

func TestLoadIgnoresEmptyValues(t *testing.T) {
	t.Setenv("BOOKLY_JWT_SECRET", "")
	t.Setenv("BOOKLY_JWT_AUDIENCE", " , ")

	cfg := Load()

	assert.Equal(t, "secretKey", cfg.SigningKey)
	assert.Equal(t, []string{"bookly"}, cfg.Audience)
}

func TestDurationOverlay(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"go duration string", "90s", 90 * time.Second},
		{"bare number means minutes", "20", 20 * time.Minute},
		{"garbage keeps the default", "soon", 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOOKLY_ACCESS_TOKEN_TTL", tt.value)

			cfg := Load()
			assert.Equal(t, tt.want, cfg.AccessTokenTTL)
		})
	}
}

func TestConfigSatisfiesAuthConfig(t *testing.T) {
	var authCfg auth.Config = Load()
	require.NotNil(t, authCfg)

	assert.Equal(t, "secretKey", authCfg.GetSigningKey())
	assert.Equal(t, 15*time.Second, authCfg.GetMailTimeout())
}
