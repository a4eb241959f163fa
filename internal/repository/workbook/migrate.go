package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sadman/hostelreview/internal/repository"
)

// MigrateReviews normalizes the Reviews sheet to the canonical 17-column
// layout. Historical documents contain two known shapes:
//
//   - canonical rows (17+ cells): copied through, truncated to 17 in case
//     stray cells were ever appended past the schema
//   - legacy rows (11–16 cells): ids, name, six ratings, comment and date
//     are positionally identical to the canonical layout; the six
//     reviewer-profile columns didn't exist yet and are backfilled empty
//
// Rows narrower than 11 cells carry too little to decode and are dropped —
// but counted and reported, not silently swallowed.
//
// The old sheet is renamed to Reviews_backup_<timestamp> before the new
// canonical sheet is written, and the document is saved exactly once at
// the end. Running this on already-canonical data rewrites the same values
// (content-idempotent) while still leaving another backup sheet behind.
func (s *Store) MigrateReviews(ctx context.Context) (*repository.MigrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(reviewSheet)
	if err != nil {
		return nil, fmt.Errorf("workbook: reading %s: %w", reviewSheet, err)
	}

	var canonical [][]string
	skipped := 0
	for i, row := range rows {
		if i == 0 {
			continue // header, replaced below
		}
		if cell(row, 0) == "" {
			continue // blank padding row, not data
		}
		switch {
		case len(row) >= canonicalReviewColumns:
			canonical = append(canonical, row[:canonicalReviewColumns])
		case len(row) >= legacyReviewColumns:
			// Only the first 11 cells are meaningful in the legacy
			// shape; anything past them is stray and must not leak
			// into the backfilled profile columns.
			migrated := make([]string, canonicalReviewColumns)
			copy(migrated, row[:legacyReviewColumns])
			canonical = append(canonical, migrated)
		default:
			skipped++
		}
	}

	// Two migrations within the same second would produce the same sheet
	// name; claim the next free second instead of appending a suffix —
	// excelize caps sheet names at 31 characters and the timestamped name
	// already uses 30 of them.
	ts := time.Now()
	backupName := "Reviews_backup_" + ts.Format("20060102_150405")
	for {
		idx, err := f.GetSheetIndex(backupName)
		if err != nil {
			return nil, fmt.Errorf("workbook: checking sheet %s: %w", backupName, err)
		}
		if idx == -1 {
			break
		}
		ts = ts.Add(time.Second)
		backupName = "Reviews_backup_" + ts.Format("20060102_150405")
	}
	if err := f.SetSheetName(reviewSheet, backupName); err != nil {
		return nil, fmt.Errorf("workbook: renaming %s to %s: %w", reviewSheet, backupName, err)
	}
	if _, err := f.NewSheet(reviewSheet); err != nil {
		return nil, fmt.Errorf("workbook: recreating %s: %w", reviewSheet, err)
	}

	if err := setRow(f, reviewSheet, 1, toCells(reviewHeader)); err != nil {
		return nil, err
	}
	for i, row := range canonical {
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := setRow(f, reviewSheet, i+2, values); err != nil {
			return nil, err
		}
	}

	if err := f.Save(); err != nil {
		return nil, fmt.Errorf("workbook: saving migrated document: %w", err)
	}

	s.logger.Info("reviews migrated",
		slog.Int("migrated", len(canonical)),
		slog.Int("skipped", skipped),
		slog.String("backupSheet", backupName),
	)

	return &repository.MigrationResult{
		Migrated:    len(canonical),
		Skipped:     skipped,
		BackupSheet: backupName,
	}, nil
}
