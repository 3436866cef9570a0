package server

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/booklyhq/bookly/auth"
	"github.com/booklyhq/bookly/repository"
)

// BookCreatePayload is the POST /books body.
type BookCreatePayload struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	PageCount   int    `json:"page_count"`
	PublishedOn string `json:"published_on"`
}

// Validate will validate the payload
func (r BookCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Genre, validation.Length(0, 128)),
		validation.Field(&r.PageCount, validation.Min(0)),
		validation.Field(&r.PublishedOn, validation.Date("2006-01-02")),
	)
}

// BookUpdatePayload is the PATCH /books/:id body.
type BookUpdatePayload struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre"`
	PageCount int    `json:"page_count"`
}

// Validate will validate the payload
func (r BookUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Genre, validation.Length(0, 128)),
		validation.Field(&r.PageCount, validation.Min(0)),
	)
}

func (s *Server) registerBookRoutes(g fiber.Router) {
	g.Use(s.Protected(), s.RequireVerified(), s.AllowRoles(auth.RoleAdmin, auth.RoleUser))

	g.Get("/", s.handleListBooks)
	g.Post("/", s.handleCreateBook)
	g.Get("/user/:userID", s.handleListUserBooks)
	g.Get("/:id", s.handleGetBook)
	g.Patch("/:id", s.handleUpdateBook)
	g.Delete("/:id", s.handleDeleteBook)
}

func (s *Server) handleListBooks(c *fiber.Ctx) error {
	books, err := s.repos.Books().List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(books)
}

func (s *Server) handleCreateBook(c *fiber.Ctx) error {
	payload := new(BookCreatePayload)
	if err := bind(c, payload); err != nil {
		return err
	}

	claims := ClaimsFromCtx(c)
	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return auth.ErrInvalidToken
	}

	book := &repository.Book{
		UserID:    userID,
		Title:     payload.Title,
		Author:    payload.Author,
		Genre:     payload.Genre,
		PageCount: payload.PageCount,
	}

	if payload.PublishedOn != "" {
		published, err := time.Parse("2006-01-02", payload.PublishedOn)
		if err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "published_on must be YYYY-MM-DD").
				WithCode(errors.CodeBadRequest)
		}
		book.PublishedOn = &published
	}

	created, err := s.repos.Books().Create(c.UserContext(), book)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (s *Server) handleListUserBooks(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userID")
	if err != nil {
		return err
	}

	books, err := s.repos.Books().ListByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(books)
}

func (s *Server) handleGetBook(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	book, err := s.repos.Books().GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(book)
}

func (s *Server) handleUpdateBook(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	payload := new(BookUpdatePayload)
	if err := bind(c, payload); err != nil {
		return err
	}

	updated, err := s.repos.Books().Update(c.UserContext(), &repository.Book{
		ID:        id,
		Title:     payload.Title,
		Author:    payload.Author,
		Genre:     payload.Genre,
		PageCount: payload.PageCount,
	})
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (s *Server) handleDeleteBook(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.repos.Books().Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "invalid identifier").
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}
