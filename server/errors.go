package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/booklyhq/bookly/auth"
)

// errorBody is the wire shape of every failed response. Clients key retry
// logic off error_code, so the values here are part of the public contract.
type errorBody struct {
	Message    string `json:"message"`
	ErrorCode  string `json:"error_code"`
	Resolution string `json:"resolution,omitempty"`
}

type wireError struct {
	status int
	body   errorBody
}

// wireErrors maps the structured error text codes onto HTTP status codes and
// client-facing bodies.
var wireErrors = map[string]wireError{
	auth.TextCodeUserExists: {
		status: fiber.StatusForbidden,
		body: errorBody{
			Message:   "User with email already exists",
			ErrorCode: "user_exists",
		},
	},
	auth.TextCodeUserNotFound: {
		status: fiber.StatusNotFound,
		body: errorBody{
			Message:   "User not found",
			ErrorCode: "user_not_found",
		},
	},
	"BOOK_NOT_FOUND": {
		status: fiber.StatusNotFound,
		body: errorBody{
			Message:   "Book not found",
			ErrorCode: "book_not_found",
		},
	},
	"REVIEW_NOT_FOUND": {
		status: fiber.StatusNotFound,
		body: errorBody{
			Message:   "Review not found",
			ErrorCode: "review_not_found",
		},
	},
	auth.TextCodeInvalidCredentials: {
		status: fiber.StatusBadRequest,
		body: errorBody{
			Message:   "Invalid email or password",
			ErrorCode: "invalid_email_or_password",
		},
	},
	auth.TextCodeInvalidToken: {
		status: fiber.StatusUnauthorized,
		body: errorBody{
			Message:    "Token is invalid or expired",
			ErrorCode:  "invalid_token",
			Resolution: "Please get a new token",
		},
	},
	auth.TextCodeTokenExpired: {
		status: fiber.StatusUnauthorized,
		body: errorBody{
			Message:    "Token is invalid or expired",
			ErrorCode:  "invalid_token",
			Resolution: "Please get a new token",
		},
	},
	auth.TextCodeTokenRevoked: {
		status: fiber.StatusUnauthorized,
		body: errorBody{
			Message:    "Token is invalid or has been revoked",
			ErrorCode:  "token_revoked",
			Resolution: "Please get a new token",
		},
	},
	auth.TextCodeAccessTokenRequired: {
		status: fiber.StatusUnauthorized,
		body: errorBody{
			Message:    "Please provide a valid access token",
			ErrorCode:  "access_token_required",
			Resolution: "Please get a valid access token",
		},
	},
	auth.TextCodeRefreshTokenRequired: {
		status: fiber.StatusUnauthorized,
		body: errorBody{
			Message:    "Please provide a valid refresh token",
			ErrorCode:  "refresh_token_required",
			Resolution: "Please get a valid refresh token",
		},
	},
	auth.TextCodeInsufficientPermission: {
		status: fiber.StatusForbidden,
		body: errorBody{
			Message:    "You are not allowed to perform this action",
			ErrorCode:  "unauthorized_action",
			Resolution: "Upgrade role",
		},
	},
	auth.TextCodeAccountNotVerified: {
		status: fiber.StatusForbidden,
		body: errorBody{
			Message:    "Account not verified",
			ErrorCode:  "account_not_verified",
			Resolution: "Check email for verification details",
		},
	},
	auth.TextCodePasswordMismatch: {
		status: fiber.StatusBadRequest,
		body: errorBody{
			Message:   "Passwords do not match",
			ErrorCode: "password_mismatch",
		},
	},
}

var serverError = wireError{
	status: fiber.StatusInternalServerError,
	body: errorBody{
		Message:   "Oops!.. something went wrong",
		ErrorCode: "server_error",
	},
}

// errorHandler turns any error that escapes a handler into the JSON error
// contract. Anything without a mapped text code is treated as internal and
// leaks no detail.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(errorBody{
			Message:   fiberErr.Message,
			ErrorCode: "http_error",
		})
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		s.logger.Error("Unhandled error", "error", err, "path", c.OriginalURL())
		return c.Status(serverError.status).JSON(serverError.body)
	}

	if wire, ok := wireErrors[richErr.TextCode]; ok {
		return c.Status(wire.status).JSON(wire.body)
	}

	if richErr.Category == errors.CategoryValidation || richErr.Category == errors.CategoryBadInput {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(errorBody{
			Message:   richErr.Message,
			ErrorCode: "validation_error",
		})
	}

	s.logger.Error(
		"Request failed",
		"path", c.OriginalURL(),
		"category", richErr.Category,
		"error", richErr.Message,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.Status(serverError.status).JSON(serverError.body)
}
