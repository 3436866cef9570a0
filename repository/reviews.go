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

// Reviews is the review store.
type Reviews interface {
	Create(ctx context.Context, review *Review) (*Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	List(ctx context.Context) ([]*Review, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*Review, error)
	// Update matches on review ID and book ID as two separate predicates;
	// a review ID paired with the wrong book must not match.
	Update(ctx context.Context, bookID uuid.UUID, review *Review) (*Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reviews struct {
	db *bun.DB
}

var _ Reviews = (*reviews)(nil)

func NewReviewsRepository(db *bun.DB) Reviews {
	return &reviews{db: db}
}

func (r *reviews) Create(ctx context.Context, review *Review) (*Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(review).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create review")
	}
	return review, nil
}

func (r *reviews) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	review := &Review{}
	err := r.db.NewSelect().
		Model(review).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load review")
	}
	return review, nil
}

func (r *reviews) List(ctx context.Context) ([]*Review, error) {
	var records []*Review
	err := r.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list reviews")
	}
	return records, nil
}

func (r *reviews) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*Review, error) {
	var records []*Review
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.book_id = ?", bookID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list reviews for book")
	}
	return records, nil
}

func (r *reviews) Update(ctx context.Context, bookID uuid.UUID, review *Review) (*Review, error) {
	now := time.Now()
	review.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(review).
		Column("rating", "review_text", "updated_at").
		Where("?TableAlias.id = ?", review.ID).
		Where("?TableAlias.book_id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update review")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrReviewNotFound
	}

	return r.GetByID(ctx, review.ID)
}

func (r *reviews) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Review)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete review")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrReviewNotFound
	}

	return nil
}
