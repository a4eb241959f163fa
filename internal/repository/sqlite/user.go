package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	conn *sql.DB
}

// Append inserts a new user, assigning an xid if the record carries none.
// A duplicate email surfaces as apperror.ErrConflict — the UNIQUE
// constraint is the source of truth, the error translation happens here so
// the service layer never parses driver error strings elsewhere.
func (r *userRepo) Append(ctx context.Context, user *model.User) (string, error) {
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", apperror.Conflict("user", user.Email)
		}
		return "", fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return user.ID, nil
}

func (r *userRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, email, password_hash, name, created_at
		 FROM users ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `WHERE email = ?`, email)
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `WHERE id = ?`, id)
}

func (r *userRepo) findOne(ctx context.Context, where, arg string) (*model.User, error) {
	var u model.User
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", arg, err)
	}
	return &u, nil
}
