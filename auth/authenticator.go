package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// TokenPair is what a successful login returns: a short-lived access token
// for API calls and a long-lived refresh token to mint new access tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterUserMessage carries the signup payload.
type RegisterUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	UseHashid bool   `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Auther orchestrates the account flows: signup, email verification, login,
// refresh, logout, and password reset. It composes the password hasher, the
// token service, the blocklist, the user store, and the mail sender.
type Auther struct {
	users           UserStore
	tokens          TokenService
	blocklist       Blocklist
	mail            MailSender
	logger          Logger
	domain          string
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
	resetTTL        time.Duration
	mailTimeout     time.Duration
	deterministicID bool
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(users UserStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		users:           users,
		tokens:          tokenService,
		blocklist:       NewMemoryBlocklist(),
		mail:            noopMailSender{},
		logger:          defLogger{},
		domain:          opts.GetDomain(),
		accessTTL:       opts.GetAccessTokenTTL(),
		refreshTTL:      opts.GetRefreshTokenTTL(),
		verificationTTL: opts.GetVerificationTokenTTL(),
		resetTTL:        opts.GetPasswordResetTokenTTL(),
		mailTimeout:     opts.GetMailTimeout(),
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithBlocklist swaps the revocation store, e.g. for the Redis-backed one.
func (s *Auther) WithBlocklist(blocklist Blocklist) *Auther {
	if blocklist != nil {
		s.blocklist = blocklist
	}
	return s
}

// WithMailSender configures the transactional mail collaborator.
func (s *Auther) WithMailSender(mail MailSender) *Auther {
	if mail != nil {
		s.mail = mail
	}
	return s
}

// WithDeterministicIDs makes every signup derive the account ID from the
// email via hashid, so re-provisioned environments keep stable user IDs.
// Individual messages can still opt in through UseHashid.
func (s *Auther) WithDeterministicIDs(enabled bool) *Auther {
	s.deterministicID = enabled
	return s
}

// WithTokenService sets a custom token service.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Blocklist returns the revocation store used by this Auther
func (s *Auther) Blocklist() Blocklist {
	return s.blocklist
}

// Signup creates an unverified account and dispatches a verification email
// carrying a short-lived verification token. Fails with ErrUserAlreadyExists
// when the email is taken.
func (s *Auther) Signup(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	existing, err := s.users.GetByEmail(ctx, msg.Email)
	if err != nil && !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for existing user")
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid password provided")
	}

	user := &User{
		FirstName:    msg.FirstName,
		LastName:     msg.LastName,
		Username:     getUsername(msg.Username, msg.Email),
		Email:        msg.Email,
		PasswordHash: hash,
		Role:         msg.Role,
		IsVerified:   false,
	}

	if user.Role == "" {
		user.Role = RoleUser
	}

	if msg.UseHashid || s.deterministicID {
		if id, err := hashid.NewUUID(msg.Email); err == nil {
			user.ID = id
		}
	}

	created, err := s.users.Register(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not create user")
	}

	token, err := s.tokens.Issue(NewIdentityFromUser(created), TokenTypeVerification, s.verificationTTL)
	if err != nil {
		// The account exists; the user can request a fresh verification mail.
		s.logger.Error("Signup could not issue verification token", "error", err, "user_id", created.ID.String())
		return created, nil
	}

	link := s.link("/api/v1/users/verify/%s", token)
	s.dispatchMail("verification", created.Email, func(ctx context.Context) error {
		return s.mail.SendAccountVerification(ctx, created.Email, link)
	})

	return created, nil
}

// VerifyEmail redeems a verification token and flips the account to
// verified. Re-verifying an already verified account is a no-op success.
func (s *Auther) VerifyEmail(ctx context.Context, tokenString string) error {
	claims, err := s.validateTyped(tokenString, TokenTypeVerification, ErrInvalidToken)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.users.GetByUUID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load user for verification")
	}

	if user.IsVerified {
		return nil
	}

	if err := s.users.MarkVerified(ctx, id); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to mark user verified")
	}

	return nil
}

// Login verifies credentials and issues an access/refresh token pair. The
// failure is uniform for unknown email and wrong password so responses carry
// no account-enumeration signal. Verification status does not gate login.
func (s *Auther) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			// Burn a compare against a throwaway hash so unknown emails
			// cost the same as wrong passwords.
			_ = ComparePasswordAndHash(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	identity := NewIdentityFromUser(user)

	access, err := s.tokens.Issue(identity, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue access token")
	}

	refresh, err := s.tokens.Issue(identity, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue refresh token")
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh mints a new access token with a fresh jti from a valid,
// unrevoked refresh token. The refresh token itself is not rotated.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.validateTyped(refreshToken, TokenTypeRefresh, ErrRefreshTokenRequired)
	if err != nil {
		return "", err
	}

	revoked, err := s.blocklist.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrTokenRevoked
	}

	access, err := s.tokens.Issue(claimsIdentity{claims: claims}, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to issue access token")
	}

	return access, nil
}

// Logout revokes both tokens' jtis immediately, regardless of remaining
// TTL. Tokens that no longer decode are skipped; they cannot be used anyway.
func (s *Auther) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, raw := range []string{accessToken, refreshToken} {
		if raw == "" {
			continue
		}

		claims, err := s.tokens.Validate(raw)
		if err != nil {
			s.logger.Debug("Logout skipping undecodable token", "error", err)
			continue
		}

		if err := s.blocklist.Revoke(ctx, claims.TokenID(), time.Until(claims.Expires())); err != nil {
			return err
		}
	}

	return nil
}

// RequestPasswordReset always reports success to the caller. A reset email
// with a short-lived password-reset token goes out only when the account
// exists, so the endpoint leaks nothing.
func (s *Auther) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Debug("Password reset requested for unknown email")
			return nil
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	token, err := s.tokens.Issue(NewIdentityFromUser(user), TokenTypePasswordReset, s.resetTTL)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to issue password reset token")
	}

	link := s.link("/api/v1/users/password-reset-confirm/%s", token)
	s.dispatchMail("password reset", user.Email, func(ctx context.Context) error {
		return s.mail.SendPasswordReset(ctx, user.Email, link)
	})

	return nil
}

// ConfirmPasswordReset redeems a password-reset token and stores the new
// password hash. The token's jti is revoked on success so it is single-use.
func (s *Auther) ConfirmPasswordReset(ctx context.Context, tokenString, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	claims, err := s.validateTyped(tokenString, TokenTypePasswordReset, ErrInvalidToken)
	if err != nil {
		return err
	}

	revoked, err := s.blocklist.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return ErrInvalidToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid new password provided")
	}

	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to update password")
	}

	if err := s.blocklist.Revoke(ctx, claims.TokenID(), time.Until(claims.Expires())); err != nil {
		// The password changed; a reusable reset token is worth a warning
		// but not a failed response.
		s.logger.Warn("ConfirmPasswordReset could not revoke reset token", "error", err)
	}

	return nil
}

// validateTyped decodes the token and enforces its type, returning
// wrongType when the token is valid but of another flavor.
func (s *Auther) validateTyped(tokenString string, want TokenType, wrongType error) (AuthClaims, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType() != want {
		return nil, wrongType
	}

	return claims, nil
}

// dispatchMail fires the send in the background with a bounded timeout so
// auth responses never wait on a mail provider. Failures are logged; the
// auth flow has already succeeded.
func (s *Auther) dispatchMail(kind, email string, send func(ctx context.Context) error) {
	timeout := s.mailTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := send(ctx); err != nil {
			s.logger.Error("Mail dispatch failed", "kind", kind, "to", email, "error", err)
		}
	}()
}

func (s *Auther) link(format string, args ...any) string {
	path := fmt.Sprintf(format, args...)
	domain := strings.TrimSuffix(s.domain, "/")
	if domain == "" {
		return path
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return domain + path
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
