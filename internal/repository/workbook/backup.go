package workbook

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/repository"
)

// backupNamePattern is the only shape of filename the restore path will
// touch. Anything else — including path traversal like "../../etc/passwd"
// — is rejected as not-found before any filesystem access happens.
var backupNamePattern = regexp.MustCompile(`^hostels_backup_\d{8}_\d{6}\.xlsx$`)

// Backup copies the live document to a timestamp-named file in the same
// directory and returns that file's name.
func (s *Store) Backup() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backupLocked()
}

// backupLocked is the shared implementation; Restore calls it while
// already holding the mutex.
func (s *Store) backupLocked() (string, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return "", apperror.NotFound("document to back up", s.path)
	} else if err != nil {
		return "", fmt.Errorf("workbook: checking live document: %w", err)
	}

	// Timestamps have second resolution; if a backup from this second
	// already exists, claim the next free second rather than overwrite it.
	ts := time.Now()
	name := fmt.Sprintf("hostels_backup_%s.xlsx", ts.Format("20060102_150405"))
	for {
		if _, err := os.Stat(filepath.Join(s.dir, name)); os.IsNotExist(err) {
			break
		} else if err != nil {
			return "", fmt.Errorf("workbook: checking backup name %s: %w", name, err)
		}
		ts = ts.Add(time.Second)
		name = fmt.Sprintf("hostels_backup_%s.xlsx", ts.Format("20060102_150405"))
	}
	if err := copyFile(s.path, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("workbook: writing backup %s: %w", name, err)
	}

	s.logger.Info("backup created", slog.String("name", name))
	return name, nil
}

// ListBackups returns the backups present next to the live document,
// newest first.
func (s *Store) ListBackups() ([]repository.BackupInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("workbook: reading backup directory: %w", err)
	}

	backups := make([]repository.BackupInfo, 0)
	for _, entry := range entries {
		if entry.IsDir() || !backupNamePattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("workbook: stat %s: %w", entry.Name(), err)
		}
		backups = append(backups, repository.BackupInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// BackupPath validates the name and returns the absolute path of an
// existing backup file. Used by the download handler.
func (s *Store) BackupPath(name string) (string, error) {
	if !backupNamePattern.MatchString(name) {
		return "", apperror.NotFound("backup", name)
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", apperror.NotFound("backup", name)
	} else if err != nil {
		return "", fmt.Errorf("workbook: stat backup %s: %w", name, err)
	}
	return path, nil
}

// Restore overwrites the live document with the named backup.
//
// A fresh pre-restore backup of the current state is taken first. If the
// overwrite itself fails partway, the live document may be left damaged —
// there is deliberately no automatic rollback; the error names the cause
// and the pre-restore backup stays on disk for manual recovery.
func (s *Store) Restore(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !backupNamePattern.MatchString(name) {
		return apperror.NotFound("backup", name)
	}
	src := filepath.Join(s.dir, name)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return apperror.NotFound("backup", name)
	} else if err != nil {
		return fmt.Errorf("workbook: stat backup %s: %w", name, err)
	}

	preRestore, err := s.backupLocked()
	if err != nil {
		return fmt.Errorf("workbook: pre-restore backup failed: %w", err)
	}

	if err := copyFile(src, s.path); err != nil {
		return fmt.Errorf("workbook: restoring %s (pre-restore state saved as %s): %w",
			name, preRestore, err)
	}

	s.logger.Info("backup restored",
		slog.String("name", name),
		slog.String("preRestoreBackup", preRestore),
	)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
