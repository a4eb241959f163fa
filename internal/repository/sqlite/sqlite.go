// Package sqlite implements the Record Store on an embedded SQLite database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works.
//
// This is the transactional backend: every Append is a single INSERT, so
// two concurrent review submissions can never clobber each other. Compare
// internal/repository/workbook, which rewrites the whole document per
// mutation and is only safe for a single writer.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/repository"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" at init time.
	_ "modernc.org/sqlite"
)

// Compile-time check that *Store satisfies the Record Store contract.
var _ repository.Store = (*Store)(nil)

// Store wraps a sql.DB connection pool. The per-collection repositories
// returned by Users/Hostels/Reviews share it.
type Store struct {
	conn *sql.DB
}

// New opens (creating if necessary) the SQLite database at dbPath and runs
// schema migrations. Use ":memory:" in tests.
func New(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path surfaces here, not on
	// the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We want reviews to be
	// rejected when they reference a nonexistent hostel or user.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return s, nil
}

// Close closes the connection pool. Always defer this next to New —
// closing flushes the WAL and releases the file lock.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) Users() repository.UserRepository     { return &userRepo{conn: s.conn} }
func (s *Store) Hostels() repository.HostelRepository { return &hostelRepo{conn: s.conn} }
func (s *Store) Reviews() repository.ReviewRepository { return &reviewRepo{conn: s.conn} }

// migrate creates the schema lazily. CREATE TABLE IF NOT EXISTS is safe to
// run on every start; the ALTER TABLE additions go through
// addColumnIfNotExists so old databases pick up the newer review columns
// without data loss.
func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS hostels (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			location    TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating hostels table: %w", err)
	}

	// Deleting a hostel (or user) cascades to its reviews. Delete isn't
	// exposed over HTTP today, but the constraint keeps the data honest if
	// it ever is.
	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS reviews (
			id              TEXT PRIMARY KEY,
			hostel_id       TEXT NOT NULL REFERENCES hostels(id) ON DELETE CASCADE,
			reviewer_id     TEXT REFERENCES users(id) ON DELETE CASCADE,
			reviewer_name   TEXT NOT NULL DEFAULT 'Anonymous',
			rating_overall  REAL,
			rating_food     REAL,
			rating_cleaning REAL,
			rating_staff    REAL,
			rating_location REAL,
			rating_owner    REAL,
			comment         TEXT NOT NULL DEFAULT '',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_reviews_hostel_id ON reviews(hostel_id);
	`)
	if err != nil {
		return fmt.Errorf("creating reviews table: %w", err)
	}

	// The reviewer-profile columns arrived after the first deployment.
	// Old databases gain them here; fresh ones hit the "already exists"
	// fast path.
	profileColumns := []string{
		"reviewer_mobile", "reviewer_college", "reviewer_course",
		"reviewer_address", "fees_per_year", "room_sharing",
	}
	for _, col := range profileColumns {
		if err := s.addColumnIfNotExists("reviews", col, "TEXT NOT NULL DEFAULT ''"); err != nil {
			return fmt.Errorf("adding %s to reviews: %w", col, err)
		}
	}

	return s.seedHostels()
}

// addColumnIfNotExists makes ALTER TABLE migrations idempotent — plain
// ALTER TABLE errors when the column already exists, so check
// pragma_table_info first.
func (s *Store) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := s.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = s.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// seedHostels inserts two example hostels into a freshly created store so
// the listing page isn't empty on first run. Runs only when the table has
// no rows at all.
func (s *Store) seedHostels() error {
	var count int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM hostels`).Scan(&count); err != nil {
		return fmt.Errorf("counting hostels: %w", err)
	}
	if count > 0 {
		return nil
	}

	seeds := []model.Hostel{
		{Name: "Sunrise Boys Hostel", Location: "Kathmandu", Description: "Walking distance from the engineering campus."},
		{Name: "Green Valley Girls Hostel", Location: "Pokhara", Description: "Quiet neighbourhood, meals included."},
	}
	for _, h := range seeds {
		_, err := s.conn.Exec(
			`INSERT INTO hostels (id, name, location, description, image, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			xid.New().String(), h.Name, h.Location, h.Description, "", time.Now(),
		)
		if err != nil {
			return fmt.Errorf("seeding hostel %q: %w", h.Name, err)
		}
	}
	return nil
}

// floatOrNil converts a nullable SQL float into the model's *float64
// representation. Shared by the review scan code.
func floatOrNil(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
