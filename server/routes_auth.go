package server

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/booklyhq/bookly/auth"
)

// SignupPayload is the POST /users/signup body.
type SignupPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Validate will validate the payload
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Length(0, 64)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// LoginPayload is the POST /users/login body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// LogoutPayload optionally carries the refresh token so both tokens get
// revoked in one call.
type LogoutPayload struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordResetRequestPayload is the POST /users/password-reset-request body.
type PasswordResetRequestPayload struct {
	Email string `json:"email"`
}

// Validate will validate the payload
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordResetConfirmPayload is the POST /users/password-reset-confirm body.
type PasswordResetConfirmPayload struct {
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

// Validate will validate the payload
func (r PasswordResetConfirmPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.ConfirmNewPassword, validation.Required),
	)
}

func (s *Server) registerAuthRoutes(g fiber.Router) {
	g.Post("/signup", s.handleSignup)
	g.Get("/verify/:token", s.handleVerifyEmail)
	g.Post("/login", s.handleLogin)
	g.Get("/refresh_token", s.handleRefreshToken)
	g.Post("/logout", s.handleLogout)
	g.Post("/password-reset-request", s.handlePasswordResetRequest)
	g.Post("/password-reset-confirm/:token", s.handlePasswordResetConfirm)
	g.Get("/me", s.Protected(), s.RequireVerified(), s.handleCurrentUser)
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	payload := new(SignupPayload)
	if err := bind(c, payload); err != nil {
		return err
	}

	user, err := s.auther.Signup(c.UserContext(), auth.RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created! Check email to verify your account",
		"user":    user,
	})
}

func (s *Server) handleVerifyEmail(c *fiber.Ctx) error {
	if err := s.auther.VerifyEmail(c.UserContext(), c.Params("token")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Account verified successfully",
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := bind(c, payload); err != nil {
		return err
	}

	pair, err := s.auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":       "Login successful",
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// handleRefreshToken mints a new access token from the bearer refresh token.
func (s *Server) handleRefreshToken(c *fiber.Ctx) error {
	access, err := s.auther.Refresh(c.UserContext(), bearerToken(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"access_token": access,
	})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	payload := new(LogoutPayload)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
				WithCode(errors.CodeBadRequest)
		}
	}

	if err := s.auther.Logout(c.UserContext(), bearerToken(c), payload.RefreshToken); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

func (s *Server) handlePasswordResetRequest(c *fiber.Ctx) error {
	payload := new(PasswordResetRequestPayload)
	if err := bind(c, payload); err != nil {
		return err
	}

	if err := s.auther.RequestPasswordReset(c.UserContext(), payload.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Please check your email for instructions to reset your password",
	})
}

func (s *Server) handlePasswordResetConfirm(c *fiber.Ctx) error {
	payload := new(PasswordResetConfirmPayload)
	if err := bind(c, payload); err != nil {
		return err
	}

	err := s.auther.ConfirmPasswordReset(
		c.UserContext(),
		c.Params("token"),
		payload.NewPassword,
		payload.ConfirmNewPassword,
	)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Password reset successfully",
	})
}

func (s *Server) handleCurrentUser(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

// bind parses the JSON body and runs the payload's validation rules.
func bind(c *fiber.Ctx, payload interface {
	Validate() error
}) error {
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	return nil
}
