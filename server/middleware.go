package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/booklyhq/bookly/auth"
)

const claimsContextKey = "auth_claims"

// bearerToken pulls the token out of the Authorization header. An empty
// result is handled downstream as an invalid token.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}

	return strings.TrimSpace(header)
}

// Protected admits only requests carrying a valid, unrevoked access token
// and stores the claims for downstream handlers.
func (s *Server) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := s.guard.RequireAccessToken(c.UserContext(), bearerToken(c))
		if err != nil {
			return err
		}

		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// AllowRoles gates a route on role membership. Must run after Protected.
func (s *Server) AllowRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.guard.RequireClaimsRole(ClaimsFromCtx(c), roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireVerified loads the current account and rejects unverified ones.
// Must run after Protected.
func (s *Server) RequireVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.currentUser(c)
		if err != nil {
			return err
		}

		if err := s.guard.RequireVerified(user); err != nil {
			return err
		}

		return c.Next()
	}
}

// ClaimsFromCtx returns the validated claims Protected stored, or nil when
// the route is not protected.
func ClaimsFromCtx(c *fiber.Ctx) auth.AuthClaims {
	claims, ok := c.Locals(claimsContextKey).(auth.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUser resolves the account behind the request's claims.
func (s *Server) currentUser(c *fiber.Ctx) (*auth.User, error) {
	claims := ClaimsFromCtx(c)
	if claims == nil {
		return nil, auth.ErrInvalidToken
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.repos.Users().GetByUUID(c.UserContext(), id)
	if err != nil {
		return nil, auth.ErrUserNotFound
	}

	return user, nil
}
