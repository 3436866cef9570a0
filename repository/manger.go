package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager bundles the stores behind a single handle and exposes the
// transaction runner the stores share.
type Manager interface {
	Users() Users
	Books() Books
	Reviews() Reviews
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Validate() error
	MustValidate()
}

type mngr struct {
	db      *bun.DB
	users   Users
	books   Books
	reviews Reviews
}

func NewManager(db *bun.DB) Manager {
	return &mngr{
		db:      db,
		users:   NewUsersRepository(db),
		books:   NewBooksRepository(db),
		reviews: NewReviewsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.books == nil {
		return errors.New("repository books should be initialized")
	}

	if m.reviews == nil {
		return errors.New("repository reviews should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Books() Books {
	return m.books
}

func (m mngr) Reviews() Reviews {
	return m.reviews
}
