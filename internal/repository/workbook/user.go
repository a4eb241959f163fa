package workbook

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/repository"
)

var _ repository.UserRepository = (*userSheetRepo)(nil)

type userSheetRepo struct {
	store *Store
}

// Append persists one user row. Email uniqueness is checked by scanning
// the sheet under the same lock that guards the write — the workbook has
// no constraints of its own, so the check and the insert must be atomic
// within the process.
func (r *userSheetRepo) Append(ctx context.Context, user *model.User) (string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return "", err
	}
	defer f.Close()

	rows, err := f.GetRows(userSheet)
	if err != nil {
		return "", fmt.Errorf("workbook: reading %s: %w", userSheet, err)
	}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if cell(row, 1) == user.Email {
			return "", apperror.Conflict("user", user.Email)
		}
	}

	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	values := []any{user.ID, user.Email, user.PasswordHash, user.Name}
	if err := setRow(f, userSheet, len(rows)+1, values); err != nil {
		return "", err
	}
	if err := f.Save(); err != nil {
		return "", fmt.Errorf("workbook: saving after user append: %w", err)
	}

	return user.ID, nil
}

func (r *userSheetRepo) ListAll(ctx context.Context) ([]model.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readUsers(f)
}

func (r *userSheetRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, email, func(u model.User) bool { return u.Email == email })
}

func (r *userSheetRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, id, func(u model.User) bool { return u.ID == id })
}

func (r *userSheetRepo) findOne(ctx context.Context, key string, match func(model.User) bool) (*model.User, error) {
	users, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", key)
}

func readUsers(f *excelize.File) ([]model.User, error) {
	rows, err := f.GetRows(userSheet)
	if err != nil {
		return nil, fmt.Errorf("workbook: reading %s: %w", userSheet, err)
	}

	users := make([]model.User, 0)
	for i, row := range rows {
		if i == 0 || cell(row, 0) == "" {
			continue
		}
		users = append(users, model.User{
			ID:           cell(row, 0),
			Email:        cell(row, 1),
			PasswordHash: cell(row, 2),
			Name:         cell(row, 3),
		})
	}
	return users, nil
}
