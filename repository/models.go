package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/booklyhq/bookly/auth"
)

// Book is the book model. Books belong to the user who submitted them.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:bk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"uid,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_uid,omitempty"`
	User          *auth.User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Title         string     `bun:"title,notnull" json:"title"`
	Author        string     `bun:"author,notnull" json:"author"`
	Genre         string     `bun:"genre" json:"genre,omitempty"`
	PageCount     int        `bun:"page_count" json:"page_count,omitempty"`
	PublishedOn   *time.Time `bun:"published_on,nullzero" json:"published_on,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Review is a user's review of a book.
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:rvw"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"uid,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_uid,omitempty"`
	User          *auth.User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	BookID        uuid.UUID  `bun:"book_id,notnull,type:uuid" json:"book_uid,omitempty"`
	Book          *Book      `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Rating        int        `bun:"rating,notnull" json:"rating"`
	ReviewText    string     `bun:"review_text,notnull" json:"review_text"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
