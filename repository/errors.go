package repository

import "github.com/goliatone/go-errors"

var (
	// ErrBookNotFound maps to a 404 at the HTTP layer.
	ErrBookNotFound = errors.New("book not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithTextCode("BOOK_NOT_FOUND")

	// ErrReviewNotFound maps to a 404 at the HTTP layer.
	ErrReviewNotFound = errors.New("review not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithTextCode("REVIEW_NOT_FOUND")
)
