package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/repository"
)

// mockStore is an in-memory repository.Store for service tests. It keeps
// everything in slices and mimics the error contracts of the real
// backends (conflict on duplicate email, not-found on missing ids).
type mockStore struct {
	users   *mockUserRepo
	hostels *mockHostelRepo
	reviews *mockReviewRepo
}

var _ repository.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		users:   &mockUserRepo{},
		hostels: &mockHostelRepo{},
		reviews: &mockReviewRepo{},
	}
}

func (m *mockStore) Users() repository.UserRepository     { return m.users }
func (m *mockStore) Hostels() repository.HostelRepository { return m.hostels }
func (m *mockStore) Reviews() repository.ReviewRepository { return m.reviews }
func (m *mockStore) Close() error                         { return nil }

type mockUserRepo struct {
	items []model.User
}

func (r *mockUserRepo) Append(ctx context.Context, u *model.User) (string, error) {
	for _, existing := range r.items {
		if existing.Email == u.Email {
			return "", apperror.Conflict("user", "email already registered")
		}
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", len(r.items)+1)
	}
	u.CreatedAt = time.Now()
	r.items = append(r.items, *u)
	return u.ID, nil
}

func (r *mockUserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	return append([]model.User(nil), r.items...), nil
}

func (r *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for i := range r.items {
		if r.items[i].Email == email {
			u := r.items[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (r *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			u := r.items[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

type mockHostelRepo struct {
	items []model.Hostel
}

func (r *mockHostelRepo) Append(ctx context.Context, h *model.Hostel) (string, error) {
	if h.ID == "" {
		h.ID = fmt.Sprintf("hostel-%d", len(r.items)+1)
	}
	h.CreatedAt = time.Now()
	r.items = append(r.items, *h)
	return h.ID, nil
}

func (r *mockHostelRepo) ListAll(ctx context.Context) ([]model.Hostel, error) {
	return append([]model.Hostel(nil), r.items...), nil
}

func (r *mockHostelRepo) FindByID(ctx context.Context, id string) (*model.Hostel, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			h := r.items[i]
			return &h, nil
		}
	}
	return nil, apperror.NotFound("hostel", id)
}

type mockReviewRepo struct {
	items []model.Review
}

func (r *mockReviewRepo) Append(ctx context.Context, rv *model.Review) (string, error) {
	if rv.ID == "" {
		rv.ID = fmt.Sprintf("review-%d", len(r.items)+1)
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now()
	}
	if rv.ReviewerName == "" {
		rv.ReviewerName = model.AnonymousReviewer
	}
	r.items = append(r.items, *rv)
	return rv.ID, nil
}

func (r *mockReviewRepo) ListAll(ctx context.Context) ([]model.Review, error) {
	return append([]model.Review(nil), r.items...), nil
}

func (r *mockReviewRepo) ListByHostel(ctx context.Context, hostelID string) ([]model.Review, error) {
	matched := make([]model.Review, 0)
	for _, rv := range r.items {
		if rv.HostelID == hostelID {
			matched = append(matched, rv)
		}
	}
	return matched, nil
}

// mockMaintainerStore adds a canned repository.Maintainer implementation
// on top of mockStore, recording what was called.
type mockMaintainerStore struct {
	*mockStore

	migrateResult  *repository.MigrationResult
	backups        []repository.BackupInfo
	restoredName   string
	backupsCreated int
}

var _ repository.Maintainer = (*mockMaintainerStore)(nil)

func newMockMaintainerStore() *mockMaintainerStore {
	return &mockMaintainerStore{
		mockStore:     newMockStore(),
		migrateResult: &repository.MigrationResult{Migrated: 3, Skipped: 1, BackupSheet: "Reviews_backup_20240101_000000"},
	}
}

func (m *mockMaintainerStore) MigrateReviews(ctx context.Context) (*repository.MigrationResult, error) {
	return m.migrateResult, nil
}

func (m *mockMaintainerStore) Backup() (string, error) {
	m.backupsCreated++
	name := fmt.Sprintf("hostels_backup_20240101_00000%d.xlsx", m.backupsCreated)
	m.backups = append(m.backups, repository.BackupInfo{Name: name})
	return name, nil
}

func (m *mockMaintainerStore) ListBackups() ([]repository.BackupInfo, error) {
	return append([]repository.BackupInfo(nil), m.backups...), nil
}

func (m *mockMaintainerStore) BackupPath(name string) (string, error) {
	for _, b := range m.backups {
		if b.Name == name {
			return "/tmp/" + name, nil
		}
	}
	return "", apperror.NotFound("backup", name)
}

func (m *mockMaintainerStore) Restore(name string) error {
	if !strings.HasPrefix(name, "hostels_backup_") {
		return apperror.NotFound("backup", name)
	}
	m.restoredName = name
	return nil
}
