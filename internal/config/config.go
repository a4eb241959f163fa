// Package config loads application configuration from environment variables.
//
// A .env file in the working directory is loaded first (via godotenv) so
// local development doesn't need a wall of exports; real environments set
// the variables directly and the missing .env is silently ignored.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendWorkbook = "workbook"
)

// Config holds all configuration for the application.
type Config struct {
	// Port the HTTP server listens on.
	Port int

	// StorageBackend selects the Record Store implementation:
	// "sqlite" (transactional per-row writes, the default) or "workbook"
	// (single .xlsx document, whole-file read-modify-write — see
	// internal/repository/workbook for the concurrency trade-off).
	StorageBackend string

	// DBPath is the sqlite database file (sqlite backend).
	DBPath string

	// WorkbookPath is the .xlsx document (workbook backend). Backups are
	// written next to it in the same directory.
	WorkbookPath string

	// UploadDir is where hostel images are stored.
	UploadDir string

	// JWTSecret signs session tokens. Must be at least 16 characters.
	JWTSecret string

	// AdminEmail identifies the single administrative account. A logged-in
	// user with this email may use the /admin endpoints.
	AdminEmail string
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	// Best effort — a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           8080,
		StorageBackend: BackendSQLite,
		DBPath:         "data/hostels.db",
		WorkbookPath:   "data/hostels.xlsx",
		UploadDir:      "static/uploads",
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AdminEmail:     "admin@hostelreview.local",
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		if v != BackendSQLite && v != BackendWorkbook {
			return nil, fmt.Errorf("config: invalid STORAGE_BACKEND %q (want %q or %q)",
				v, BackendSQLite, BackendWorkbook)
		}
		cfg.StorageBackend = v
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WORKBOOK_PATH"); v != "" {
		cfg.WorkbookPath = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.AdminEmail = v
	}

	return cfg, nil
}
