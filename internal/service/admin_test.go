package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sadman/hostelreview/internal/apperror"
)

func TestAdmin_NonMaintainerBackend(t *testing.T) {
	// A plain store without maintenance support: every operation must be
	// rejected as a validation error, not a crash or a silent no-op.
	svc := NewAdminService(newMockStore(), testLogger())
	ctx := context.Background()

	if _, err := svc.Migrate(ctx); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Migrate() error = %v, want ErrValidation", err)
	}
	if _, err := svc.CreateBackup(); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CreateBackup() error = %v, want ErrValidation", err)
	}
	if _, err := svc.ListBackups(); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("ListBackups() error = %v, want ErrValidation", err)
	}
	if err := svc.Restore("hostels_backup_20240101_000000.xlsx", true); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Restore() error = %v, want ErrValidation", err)
	}
}

func TestAdmin_Migrate(t *testing.T) {
	store := newMockMaintainerStore()
	svc := NewAdminService(store, testLogger())

	res, err := svc.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if res.Migrated != 3 || res.Skipped != 1 {
		t.Errorf("result = %+v, want migrated=3 skipped=1", res)
	}
	if res.BackupSheet == "" {
		t.Error("result should name the backup sheet")
	}
}

func TestAdmin_BackupLifecycle(t *testing.T) {
	store := newMockMaintainerStore()
	svc := NewAdminService(store, testLogger())

	name, err := svc.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}

	backups, err := svc.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(backups) != 1 || backups[0].Name != name {
		t.Errorf("ListBackups() = %+v, want the created backup %s", backups, name)
	}

	path, err := svc.BackupFile(name)
	if err != nil {
		t.Fatalf("BackupFile() error = %v", err)
	}
	if path == "" {
		t.Error("BackupFile() returned empty path")
	}

	if _, err := svc.BackupFile("hostels_backup_19990101_000000.xlsx"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown backup: error = %v, want ErrNotFound", err)
	}
}

func TestAdmin_RestoreRequiresConfirmation(t *testing.T) {
	store := newMockMaintainerStore()
	svc := NewAdminService(store, testLogger())

	err := svc.Restore("hostels_backup_20240101_000001.xlsx", false)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("unconfirmed Restore() error = %v, want ErrValidation", err)
	}
	if store.restoredName != "" {
		t.Error("unconfirmed restore must not reach the store")
	}

	if err := svc.Restore("hostels_backup_20240101_000001.xlsx", true); err != nil {
		t.Fatalf("confirmed Restore() error = %v", err)
	}
	if store.restoredName != "hostels_backup_20240101_000001.xlsx" {
		t.Errorf("restoredName = %q", store.restoredName)
	}
}
