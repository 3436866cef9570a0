package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Books is the book store consumed by the HTTP layer and, for existence
// checks, by the review store.
type Books interface {
	Create(ctx context.Context, book *Book) (*Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	List(ctx context.Context) ([]*Book, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Book, error)
	Update(ctx context.Context, book *Book) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type books struct {
	db *bun.DB
}

var _ Books = (*books)(nil)

func NewBooksRepository(db *bun.DB) Books {
	return &books{db: db}
}

func (r *books) Create(ctx context.Context, book *Book) (*Book, error) {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(book).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create book")
	}
	return book, nil
}

func (r *books) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	book := &Book{}
	err := r.db.NewSelect().
		Model(book).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load book")
	}
	return book, nil
}

func (r *books) List(ctx context.Context) ([]*Book, error) {
	var records []*Book
	err := r.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list books")
	}
	return records, nil
}

func (r *books) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Book, error) {
	var records []*Book
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list books for user")
	}
	return records, nil
}

func (r *books) Update(ctx context.Context, book *Book) (*Book, error) {
	now := time.Now()
	book.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(book).
		Column("title", "author", "genre", "page_count", "published_on", "updated_at").
		Where("?TableAlias.id = ?", book.ID).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update book")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrBookNotFound
	}

	return r.GetByID(ctx, book.ID)
}

func (r *books) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete book")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrBookNotFound
	}

	return nil
}

func (r *books) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Book)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check book existence")
	}
	return exists, nil
}
