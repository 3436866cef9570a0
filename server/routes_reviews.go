package server

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/booklyhq/bookly/auth"
	"github.com/booklyhq/bookly/repository"
)

// ReviewCreatePayload is the POST /reviews/book/:bookID body.
type ReviewCreatePayload struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

// Validate will validate the payload
func (r ReviewCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.ReviewText, validation.Required, validation.Length(1, 5000)),
	)
}

// ReviewUpdatePayload is the PATCH /reviews/book/:bookID/:id body.
type ReviewUpdatePayload struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

// Validate will validate the payload
func (r ReviewUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.ReviewText, validation.Required, validation.Length(1, 5000)),
	)
}

func (s *Server) registerReviewRoutes(g fiber.Router) {
	g.Use(s.Protected(), s.RequireVerified(), s.AllowRoles(auth.RoleAdmin, auth.RoleUser))

	g.Post("/book/:bookID", s.handleAddReview)
	g.Get("/", s.handleListReviews)
	g.Get("/:id", s.handleGetReview)
	g.Patch("/book/:bookID/:id", s.handleUpdateReview)
	g.Delete("/:id", s.handleDeleteReview)
}

func (s *Server) handleAddReview(c *fiber.Ctx) error {
	bookID, err := parseUUIDParam(c, "bookID")
	if err != nil {
		return err
	}

	payload := new(ReviewCreatePayload)
	if err := bind(c, payload); err != nil {
		return err
	}

	claims := ClaimsFromCtx(c)
	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return auth.ErrInvalidToken
	}

	exists, err := s.repos.Books().Exists(c.UserContext(), bookID)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrBookNotFound
	}

	created, err := s.repos.Reviews().Create(c.UserContext(), &repository.Review{
		UserID:     userID,
		BookID:     bookID,
		Rating:     payload.Rating,
		ReviewText: payload.ReviewText,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (s *Server) handleListReviews(c *fiber.Ctx) error {
	reviews, err := s.repos.Reviews().List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(reviews)
}

func (s *Server) handleGetReview(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	review, err := s.repos.Reviews().GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(review)
}

func (s *Server) handleUpdateReview(c *fiber.Ctx) error {
	bookID, err := parseUUIDParam(c, "bookID")
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	payload := new(ReviewUpdatePayload)
	if err := bind(c, payload); err != nil {
		return err
	}

	updated, err := s.repos.Reviews().Update(c.UserContext(), bookID, &repository.Review{
		ID:         id,
		Rating:     payload.Rating,
		ReviewText: payload.ReviewText,
	})
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (s *Server) handleDeleteReview(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.repos.Reviews().Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Review successfully deleted",
	})
}
