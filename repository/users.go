package repository

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/booklyhq/bookly/auth"
)

var MarkUserVerifiedSQL = `UPDATE "users" AS "usr"
SET
	"is_verified" = TRUE,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?
RETURNING *;`

var UpdateUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?
RETURNING *;`

// Users is the user store. It satisfies auth.UserStore for the auth core
// and exposes the underlying generic repository for everything else.
type Users interface {
	repository.Repository[*auth.User]

	GetByEmail(ctx context.Context, email string) (*auth.User, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*auth.User, error)
	Register(ctx context.Context, user *auth.User) (*auth.User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type users struct {
	repository.Repository[*auth.User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*auth.User](db, repository.ModelHandlers[*auth.User]{
		NewRecord: func() *auth.User { return &auth.User{} },
		GetID: func(u *auth.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *auth.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return a.Repository.GetByIdentifier(ctx, email)
}

func (a *users) GetByUUID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *users) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) MarkVerified(ctx context.Context, id uuid.UUID) error {
	res, err := a.Repository.Raw(ctx, MarkUserVerifiedSQL, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

// UpdatePassword stores a new password hash. Verification status is not
// touched; only redeeming a verification token flips it.
func (a *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.Raw(ctx, UpdateUserPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareUserDefaults(record *auth.User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = auth.RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
