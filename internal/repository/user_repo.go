package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"go-auth-core/internal/model"
)

// Store is the identity store consumed by the auth service.
type Store interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Insert(ctx context.Context, u model.User) (model.User, error)
	Update(ctx context.Context, u model.User) error
	// UpdateLastLogin touches only last_login and updated_at, so it never
	// overwrites a concurrent change to the rest of the row.
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	// WithinTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

var _ Store = (*UserRepository)(nil)

type UserRepository struct {
	db           DBTX
	queryTimeout time.Duration
}

type RepositoryOption func(*UserRepository)

// WithQueryTimeout bounds every single statement. Zero leaves the caller's
// context untouched.
func WithQueryTimeout(d time.Duration) RepositoryOption {
	return func(r *UserRepository) {
		r.queryTimeout = d
	}
}

func NewUserRepository(db DBTX, opts ...RepositoryOption) *UserRepository {
	r := &UserRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const (
	userColumns = `id, username, email, password_hash, first_name, last_name, is_active, created_at, updated_at, last_login`

	qUserByID       = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	qUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	qUserByEmail    = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	qUserInsert = `
INSERT INTO users (username, email, password_hash, first_name, last_name, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

	qUserTouchLogin = `UPDATE users SET last_login = $2, updated_at = now() WHERE id = $1`

	qUserUpdate = `
UPDATE users
SET username      = $2,
    email         = $3,
    password_hash = $4,
    first_name    = $5,
    last_name     = $6,
    is_active     = $7,
    last_login    = $8,
    updated_at    = now()
WHERE id = $1`
)

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	return r.findOne(ctx, qUserByID, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	return r.findOne(ctx, qUserByUsername, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, qUserByEmail, email)
}

// Insert persists u and returns the stored row. Unique violations on username
// or email surface as model.ErrDuplicateUsername / model.ErrDuplicateEmail.
func (r *UserRepository) Insert(ctx context.Context, u model.User) (model.User, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	created, err := scanUser(r.db.QueryRow(ctx, qUserInsert,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsActive))
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case usersUsernameKey:
				return model.User{}, model.ErrDuplicateUsername
			case usersEmailKey:
				return model.User{}, model.ErrDuplicateEmail
			}
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) Update(ctx context.Context, u model.User) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, qUserUpdate,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsActive, u.LastLogin)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case usersUsernameKey:
				return model.ErrDuplicateUsername
			case usersEmailKey:
				return model.ErrDuplicateEmail
			}
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, qUserTouchLogin, id, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("commit tx: %w", commitErr)
		}
	}()

	return fn(ctx, &UserRepository{db: tx, queryTimeout: r.queryTimeout})
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (model.User, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	return u, err
}
