package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Guard makes the per-request admission decisions: token validity, token
// flavor, revocation status, role membership, and account verification.
// It layers business-level revocation on top of the codec's cryptographic
// validation.
type Guard struct {
	validator TokenValidator
	blocklist Blocklist
	logger    Logger
}

// NewGuard returns a Guard backed by the given validator and blocklist.
func NewGuard(validator TokenValidator, blocklist Blocklist) *Guard {
	return &Guard{
		validator: validator,
		blocklist: blocklist,
		logger:    defLogger{},
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// RequireAccessToken admits only valid, unrevoked access tokens.
func (g *Guard) RequireAccessToken(ctx context.Context, tokenString string) (AuthClaims, error) {
	return g.require(ctx, tokenString, TokenTypeAccess, ErrAccessTokenRequired)
}

// RequireRefreshToken admits only valid, unrevoked refresh tokens.
func (g *Guard) RequireRefreshToken(ctx context.Context, tokenString string) (AuthClaims, error) {
	return g.require(ctx, tokenString, TokenTypeRefresh, ErrRefreshTokenRequired)
}

func (g *Guard) require(ctx context.Context, tokenString string, want TokenType, wrongType error) (AuthClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims, err := g.validator.Validate(tokenString)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, err
		}
		return nil, ErrInvalidToken
	}

	if claims.TokenType() != want {
		return nil, wrongType
	}

	revoked, err := g.blocklist.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		g.logger.Error("Guard revocation check failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "revocation check failed")
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// RequireRole enforces role membership: the identity's role must be in the
// allowed set. An empty set is a programming error, not an authz decision.
func (g *Guard) RequireRole(identity Identity, allowed ...string) error {
	if len(allowed) == 0 {
		return errors.New("route configured with an empty role set", errors.CategoryInternal)
	}

	if identity == nil {
		return ErrInsufficientPermission
	}

	role := identity.Role()
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}

	return ErrInsufficientPermission
}

// RequireClaimsRole is RequireRole for validated token claims.
func (g *Guard) RequireClaimsRole(claims AuthClaims, allowed ...string) error {
	if claims == nil {
		return ErrInsufficientPermission
	}
	return g.RequireRole(claimsIdentity{claims: claims}, allowed...)
}

// RequireVerified gates operations that need a verified account. Which
// operations those are is the caller's decision; login is deliberately not
// one of them.
func (g *Guard) RequireVerified(user *User) error {
	if user == nil {
		return ErrUserNotFound
	}
	if !user.IsVerified {
		return ErrAccountNotVerified
	}
	return nil
}
