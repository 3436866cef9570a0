package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklyhq/bookly/auth"
)

func newGuardFixture(t *testing.T) (auth.TokenService, *auth.MemoryBlocklist, *auth.Guard) {
	t.Helper()

	service := auth.NewTokenService(
		[]byte("test-signing-key"),
		"bookly-test",
		jwt.ClaimStrings{"bookly-test"},
		nil,
	)

	blocklist := auth.NewMemoryBlocklist()
	t.Cleanup(blocklist.Close)

	return service, blocklist, auth.NewGuard(service, blocklist)
}

func TestGuard_RequireAccessToken(t *testing.T) {
	ctx := context.Background()
	service, blocklist, guard := newGuardFixture(t)

	t.Run("admits valid access tokens", func(t *testing.T) {
		token, err := service.Issue(testIdentity(), auth.TokenTypeAccess, time.Minute)
		require.NoError(t, err)

		claims, err := guard.RequireAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, auth.TokenTypeAccess, claims.TokenType())
	})

	t.Run("rejects empty tokens", func(t *testing.T) {
		_, err := guard.RequireAccessToken(ctx, "")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects refresh tokens", func(t *testing.T) {
		token, err := service.Issue(testIdentity(), auth.TokenTypeRefresh, time.Minute)
		require.NoError(t, err)

		_, err = guard.RequireAccessToken(ctx, token)
		assert.ErrorIs(t, err, auth.ErrAccessTokenRequired)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		token, err := service.Issue(testIdentity(), auth.TokenTypeAccess, time.Millisecond)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		_, err = guard.RequireAccessToken(ctx, token)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("rejects revoked tokens", func(t *testing.T) {
		token, err := service.Issue(testIdentity(), auth.TokenTypeAccess, time.Minute)
		require.NoError(t, err)

		claims, err := service.Validate(token)
		require.NoError(t, err)
		require.NoError(t, blocklist.Revoke(ctx, claims.TokenID(), time.Minute))

		_, err = guard.RequireAccessToken(ctx, token)
		assert.ErrorIs(t, err, auth.ErrTokenRevoked)
	})
}

func TestGuard_RequireRefreshToken(t *testing.T) {
	ctx := context.Background()
	service, _, guard := newGuardFixture(t)

	t.Run("admits valid refresh tokens", func(t *testing.T) {
		token, err := service.Issue(testIdentity(), auth.TokenTypeRefresh, time.Minute)
		require.NoError(t, err)

		claims, err := guard.RequireRefreshToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, auth.TokenTypeRefresh, claims.TokenType())
	})

	t.Run("rejects access tokens", func(t *testing.T) {
		token, err := service.Issue(testIdentity(), auth.TokenTypeAccess, time.Minute)
		require.NoError(t, err)

		_, err = guard.RequireRefreshToken(ctx, token)
		assert.ErrorIs(t, err, auth.ErrRefreshTokenRequired)
	})
}

func TestGuard_RequireRole(t *testing.T) {
	_, _, guard := newGuardFixture(t)

	tests := []struct {
		name    string
		role    string
		allowed []string
		wantErr error
	}{
		{
			name:    "role in allowed set",
			role:    auth.RoleUser,
			allowed: []string{auth.RoleAdmin, auth.RoleUser},
		},
		{
			name:    "role not in allowed set",
			role:    auth.RoleUser,
			allowed: []string{auth.RoleAdmin},
			wantErr: auth.ErrInsufficientPermission,
		},
		{
			name:    "unknown role",
			role:    "superuser",
			allowed: []string{auth.RoleAdmin, auth.RoleUser},
			wantErr: auth.ErrInsufficientPermission,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.RequireRole(MockIdentity{RoleValue: tt.role}, tt.allowed...)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("empty allowed set is a configuration error", func(t *testing.T) {
		err := guard.RequireRole(MockIdentity{RoleValue: auth.RoleAdmin})
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInsufficientPermission)
	})

	t.Run("nil identity is denied", func(t *testing.T) {
		err := guard.RequireRole(nil, auth.RoleUser)
		assert.ErrorIs(t, err, auth.ErrInsufficientPermission)
	})
}

func TestGuard_RequireVerified(t *testing.T) {
	_, _, guard := newGuardFixture(t)

	t.Run("verified account passes", func(t *testing.T) {
		assert.NoError(t, guard.RequireVerified(&auth.User{IsVerified: true}))
	})

	t.Run("unverified account is rejected", func(t *testing.T) {
		err := guard.RequireVerified(&auth.User{IsVerified: false})
		assert.ErrorIs(t, err, auth.ErrAccountNotVerified)
	})

	t.Run("missing account is rejected", func(t *testing.T) {
		err := guard.RequireVerified(nil)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}
