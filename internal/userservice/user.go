package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrNotFound       = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

// uniqueViolation checks whether err is a Postgres unique constraint
// violation on the named index.
func uniqueViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// insertUser stores the user with a lowercased email. Uniqueness is enforced
// by the users_email_key index on lower(email), so a concurrent duplicate
// registration loses at commit rather than at an application-level pre-check.
func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (name, email, password, avatar)
		VALUES ($1, lower($2), $3, $4)
		RETURNING id, email, created_at, updated_at, version`

	args := []any{
		u.Name,
		u.Email,
		u.Password.hash,
		u.Avatar,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case uniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	return nil
}

func (m *DBModel) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password, avatar, blog_ids, comment_ids, created_at, updated_at, version
		FROM users
		WHERE email = lower($1)`

	var u User

	err := m.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password.hash, &u.Avatar, pq.Array(&u.BlogIDs), pq.Array(&u.CommentIDs), &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) getUserById(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, name, email, avatar, blog_ids, comment_ids, created_at, updated_at, version
		FROM users
		WHERE id = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, pq.Array(&u.BlogIDs), pq.Array(&u.CommentIDs), &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}
