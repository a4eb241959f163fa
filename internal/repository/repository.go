// Package repository defines the storage contracts the rest of the
// application programs against.
//
// The Record Store is a capability interface with two interchangeable
// implementations, selected by configuration:
//
//   - internal/repository/sqlite:   relational tables, per-row transactions
//   - internal/repository/workbook: one .xlsx document with named sheets,
//     whole-document read-modify-write
//
// Both must produce identical aggregate results; the service layer never
// knows which one it's talking to.
package repository

import (
	"context"
	"time"

	"github.com/sadman/hostelreview/internal/model"
)

// Store gives uniform access to the three entity collections.
//
// Lifecycle: opened once at process start (see internal/server), closed on
// shutdown. There is no ambient global handle — the store is constructed
// explicitly and passed down.
type Store interface {
	Users() UserRepository
	Hostels() HostelRepository
	Reviews() ReviewRepository
	Close() error
}

// UserRepository stores registered accounts.
type UserRepository interface {
	// Append persists a new user. If the record carries no ID, a fresh
	// unique one is assigned; the assigned ID is returned either way.
	Append(ctx context.Context, user *model.User) (string, error)
	ListAll(ctx context.Context) ([]model.User, error)
	// FindByEmail returns apperror.ErrNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// HostelRepository stores hostel listings.
type HostelRepository interface {
	Append(ctx context.Context, hostel *model.Hostel) (string, error)
	ListAll(ctx context.Context) ([]model.Hostel, error)
	FindByID(ctx context.Context, id string) (*model.Hostel, error)
}

// ReviewRepository stores reviews. Filtering by hostel is a linear scan in
// the workbook backend and an indexed query in sqlite — fine either way at
// review-site volumes.
type ReviewRepository interface {
	Append(ctx context.Context, review *model.Review) (string, error)
	ListAll(ctx context.Context) ([]model.Review, error)
	ListByHostel(ctx context.Context, hostelID string) ([]model.Review, error)
}

// MigrationResult reports what a review-schema migration did.
// Skipped counts malformed rows (fewer than 11 cells) that were dropped —
// surfaced here rather than swallowed, so callers can see data loss.
type MigrationResult struct {
	Migrated    int    `json:"migrated"`
	Skipped     int    `json:"skipped"`
	BackupSheet string `json:"backupSheet"`
}

// BackupInfo describes one point-in-time backup file.
type BackupInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Maintainer is the optional maintenance capability of a Store. Only the
// workbook backend implements it; callers discover support with a type
// assertion and report a validation error otherwise.
type Maintainer interface {
	// MigrateReviews normalizes the Reviews collection to the canonical
	// 17-column shape, renaming the old collection to a timestamped backup
	// first. Content-idempotent; each run leaves another backup behind.
	MigrateReviews(ctx context.Context) (*MigrationResult, error)

	// Backup snapshots the whole document to a timestamp-named file and
	// returns that file's name. Returns a not-found error when no document
	// exists yet.
	Backup() (string, error)

	ListBackups() ([]BackupInfo, error)

	// Restore overwrites the live document with the named backup after
	// taking a fresh pre-restore backup. Names not matching the backup
	// pattern are rejected as not-found without touching the filesystem.
	Restore(name string) error

	// BackupPath validates the name and returns the absolute path of an
	// existing backup, for download handlers.
	BackupPath(name string) (string, error)
}
