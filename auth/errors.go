package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients in the error_code field. Clients key
// retry logic off these, so they are part of the public contract.
const (
	TextCodeInvalidToken           = "INVALID_TOKEN"
	TextCodeTokenExpired           = "TOKEN_EXPIRED"
	TextCodeTokenRevoked           = "TOKEN_REVOKED"
	TextCodeAccessTokenRequired    = "ACCESS_TOKEN_REQUIRED"
	TextCodeRefreshTokenRequired   = "REFRESH_TOKEN_REQUIRED"
	TextCodeUserExists             = "USER_EXISTS"
	TextCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	TextCodeInsufficientPermission = "INSUFFICIENT_PERMISSION"
	TextCodeUserNotFound           = "USER_NOT_FOUND"
	TextCodeAccountNotVerified     = "ACCOUNT_NOT_VERIFIED"
	TextCodePasswordMismatch       = "PASSWORD_MISMATCH"
)

// Request-scoped failures. Every value maps to a 4xx response; anything not
// in this list is treated as an internal error and never leaks detail.
var (
	// ErrInvalidToken is returned for malformed payloads and signature mismatches.
	ErrInvalidToken = errors.New("token is invalid or expired", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(TextCodeInvalidToken)

	// ErrTokenExpired is returned when a structurally valid token is past its expiry.
	ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(TextCodeTokenExpired)

	// ErrTokenRevoked is returned when a token's jti is present in the blocklist.
	ErrTokenRevoked = errors.New("token has been revoked", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(TextCodeTokenRevoked)

	// ErrAccessTokenRequired is returned when a non-access token is presented
	// on an endpoint that requires an access token.
	ErrAccessTokenRequired = errors.New("please provide a valid access token", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode(TextCodeAccessTokenRequired)

	// ErrRefreshTokenRequired is returned when a non-refresh token is presented
	// on the refresh endpoint.
	ErrRefreshTokenRequired = errors.New("please provide a valid refresh token", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode(TextCodeRefreshTokenRequired)

	// ErrUserAlreadyExists is returned on signup with an email that is taken.
	ErrUserAlreadyExists = errors.New("user with email already exists", errors.CategoryConflict).
				WithCode(errors.CodeConflict).
				WithTextCode(TextCodeUserExists)

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
				WithCode(errors.CodeBadRequest).
				WithTextCode(TextCodeInvalidCredentials)

	// ErrInsufficientPermission is returned when the identity's role is not in
	// the route's allowed set.
	ErrInsufficientPermission = errors.New("you are not allowed to perform this action", errors.CategoryAuthz).
					WithCode(errors.CodeForbidden).
					WithTextCode(TextCodeInsufficientPermission)

	// ErrUserNotFound is returned when a token references an account that no
	// longer resolves.
	ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithTextCode(TextCodeUserNotFound)

	// ErrAccountNotVerified gates endpoints that require a verified account.
	ErrAccountNotVerified = errors.New("account not verified", errors.CategoryAuthz).
				WithCode(errors.CodeForbidden).
				WithTextCode(TextCodeAccountNotVerified)

	// ErrPasswordMismatch is returned when new and confirm passwords differ.
	ErrPasswordMismatch = errors.New("passwords do not match", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest).
				WithTextCode(TextCodePasswordMismatch)
)

// Password hashing errors.
var (
	ErrNoEmptyString             = errors.New("password must not be empty", errors.CategoryValidation)
	ErrMismatchedHashAndPassword = errors.New("password does not match hash", errors.CategoryAuth)
)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
