// Package workbook implements the Record Store on a single .xlsx document
// with three named sheets: Hostels, Reviews, Users.
//
// This is the zero-infrastructure backend: the whole site's data lives in
// one spreadsheet a non-technical owner can open and read. The price is
// the write model — every mutation is load document → mutate in memory →
// save document. A process-level mutex serializes writers inside one
// process, but across processes the file is last-write-wins: two
// simultaneous submissions from separate processes can silently drop one.
// That hazard is inherent to the format and deliberately not hidden here;
// deployments that need concurrent writers should configure the sqlite
// backend instead.
package workbook

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/xuri/excelize/v2"

	"github.com/sadman/hostelreview/internal/repository"
)

const (
	hostelSheet = "Hostels"
	reviewSheet = "Reviews"
	userSheet   = "Users"
)

// Sheet headers. The Reviews header is the canonical 17-column shape that
// the migrator normalizes legacy rows into; its column order is load-bearing
// (rows are decoded positionally) and must not be reordered.
var (
	hostelHeader = []string{"id", "name", "location", "description", "image"}

	reviewHeader = []string{
		"hostel_id", "reviewer_id", "reviewer_name",
		"rating_overall", "rating_food", "rating_cleaning",
		"rating_staff", "rating_location", "rating_owner",
		"comment", "date",
		"reviewer_mobile", "reviewer_college", "reviewer_course",
		"reviewer_address", "fees_per_year", "room_sharing",
	}

	userHeader = []string{"id", "email", "password_hash", "name"}
)

// canonicalReviewColumns is the width of the current Reviews layout.
// legacyReviewColumns is the minimum width of a decodable historical row
// (ids, name, six ratings, comment, date). Anything narrower is malformed.
const (
	canonicalReviewColumns = 17
	legacyReviewColumns    = 11
)

// Compile-time checks: *Store is both a Record Store and a Maintainer.
var (
	_ repository.Store      = (*Store)(nil)
	_ repository.Maintainer = (*Store)(nil)
)

// Store is the workbook-backed Record Store. All sheet repositories share
// the one mutex; holding it for the full load-mutate-save cycle is what
// keeps in-process writers from interleaving.
type Store struct {
	path   string
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

// Open prepares the workbook store at path, creating the document with
// headers (and two seed hostels) if it doesn't exist yet.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("workbook: creating data directory: %w", err)
	}

	s := &Store{path: path, dir: dir, logger: logger}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.create(); err != nil {
			return nil, err
		}
		logger.Info("workbook created", slog.String("path", path))
	} else if err != nil {
		return nil, fmt.Errorf("workbook: checking %s: %w", path, err)
	}

	return s, nil
}

// Close is a no-op: the document is opened and saved per operation, never
// held. Present to satisfy the Store lifecycle contract.
func (s *Store) Close() error { return nil }

func (s *Store) Users() repository.UserRepository     { return &userSheetRepo{s} }
func (s *Store) Hostels() repository.HostelRepository { return &hostelSheetRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository { return &reviewSheetRepo{s} }

// create writes a fresh document: the three sheets with header rows and
// two example hostels so the listing page isn't empty on first run.
func (s *Store) create() error {
	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []string{hostelSheet, reviewSheet, userSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("workbook: creating sheet %s: %w", sheet, err)
		}
	}
	// Drop excelize's default sheet — only the named collections remain.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("workbook: removing default sheet: %w", err)
	}

	if err := setRow(f, hostelSheet, 1, toCells(hostelHeader)); err != nil {
		return err
	}
	if err := setRow(f, reviewSheet, 1, toCells(reviewHeader)); err != nil {
		return err
	}
	if err := setRow(f, userSheet, 1, toCells(userHeader)); err != nil {
		return err
	}

	seeds := [][]any{
		{newID(), "Sunrise Boys Hostel", "Kathmandu", "Walking distance from the engineering campus.", ""},
		{newID(), "Green Valley Girls Hostel", "Pokhara", "Quiet neighbourhood, meals included.", ""},
	}
	for i, seed := range seeds {
		if err := setRow(f, hostelSheet, i+2, seed); err != nil {
			return err
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("workbook: saving new document: %w", err)
	}
	return nil
}

// load opens the live document. Callers must hold s.mu and close the file.
func (s *Store) load() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("workbook: opening %s: %w", s.path, err)
	}
	return f, nil
}

// setRow writes one row starting at column A of the given 1-based row.
func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("workbook: row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("workbook: writing row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// appendRow writes values into the first row past the current data.
func appendRow(f *excelize.File, sheet string, values []any) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("workbook: reading %s: %w", sheet, err)
	}
	return setRow(f, sheet, len(rows)+1, values)
}

func toCells(header []string) []any {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}

// cell returns row[i], or "" when the row is too short. GetRows trims
// trailing empty cells, so short rows are routine, not an error.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// parseRating coerces a sheet cell to an optional rating. Empty and
// unparseable values both mean "not rated" — legacy sheets contain junk
// like "N/A" in rating cells, and the original data model treats those as
// absent rather than failing the whole row.
func parseRating(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func formatRating(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// dateLayouts covers the formats found in historical sheets: our own
// RFC3339 writes plus openpyxl-era "YYYY-MM-DD HH:MM:SS" strings.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func newID() string {
	return xid.New().String()
}
