package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/repository"
)

// AdminService exposes the maintenance surface: schema migration, backup
// and restore.
//
// Maintenance only applies to the workbook backend — the relational
// backend manages its own schema at startup and its file is not the
// backup unit. The service discovers support at runtime by asserting the
// store to repository.Maintainer and rejects the operations cleanly on
// the other backend.
type AdminService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewAdminService(store repository.Store, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:  store,
		logger: logger,
	}
}

func (s *AdminService) maintainer() (repository.Maintainer, error) {
	m, ok := s.store.(repository.Maintainer)
	if !ok {
		return nil, apperror.MaintenanceUnsupported()
	}
	return m, nil
}

// Migrate normalizes stored reviews to the canonical column layout and
// reports how many rows were migrated and how many were too malformed to
// keep.
func (s *AdminService) Migrate(ctx context.Context) (*repository.MigrationResult, error) {
	m, err := s.maintainer()
	if err != nil {
		return nil, err
	}

	res, err := m.MigrateReviews(ctx)
	if err != nil {
		s.logger.Error("migration failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("migrating reviews: %w", err)
	}
	return res, nil
}

// CreateBackup snapshots the live document and returns the backup's name.
func (s *AdminService) CreateBackup() (string, error) {
	m, err := s.maintainer()
	if err != nil {
		return "", err
	}
	return m.Backup()
}

// ListBackups returns the available backups, newest first.
func (s *AdminService) ListBackups() ([]repository.BackupInfo, error) {
	m, err := s.maintainer()
	if err != nil {
		return nil, err
	}
	return m.ListBackups()
}

// BackupFile validates the name and returns the on-disk path of a backup
// for download.
func (s *AdminService) BackupFile(name string) (string, error) {
	m, err := s.maintainer()
	if err != nil {
		return "", err
	}
	return m.BackupPath(name)
}

// Restore replaces the live document with the named backup. The caller
// must pass confirm=true; restore overwrites current data and is not an
// operation to trigger by accident.
func (s *AdminService) Restore(name string, confirm bool) error {
	m, err := s.maintainer()
	if err != nil {
		return err
	}
	if !confirm {
		return apperror.ValidationFailed("confirm",
			"restore overwrites current data; pass confirm=true to proceed")
	}

	if err := m.Restore(name); err != nil {
		return err
	}

	s.logger.Info("backup restored", slog.String("name", name))
	return nil
}
