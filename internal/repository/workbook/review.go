package workbook

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/repository"
)

var _ repository.ReviewRepository = (*reviewSheetRepo)(nil)

type reviewSheetRepo struct {
	store *Store
}

// Append persists one review row in the canonical 17-column layout.
//
// The sheet carries no id column — that matches the historical document
// format, where reviews were only ever addressed by hostel. An xid is
// still generated and returned so callers get a stable handle for the
// duration of the request, but it is not written to the sheet.
func (r *reviewSheetRepo) Append(ctx context.Context, review *model.Review) (string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return "", err
	}
	defer f.Close()

	if review.ID == "" {
		review.ID = newID()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	if review.ReviewerName == "" {
		review.ReviewerName = model.AnonymousReviewer
	}

	if err := appendRow(f, reviewSheet, encodeReview(review)); err != nil {
		return "", err
	}
	if err := f.Save(); err != nil {
		return "", fmt.Errorf("workbook: saving after review append: %w", err)
	}

	return review.ID, nil
}

func (r *reviewSheetRepo) ListAll(ctx context.Context) ([]model.Review, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reviews, skipped, err := readReviews(f)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		// Malformed rows are tolerated on the read path; the migrator is
		// the place that reports them to the operator.
		s.logger.Warn("skipped malformed review rows",
			"skipped", skipped,
		)
	}
	return reviews, nil
}

func (r *reviewSheetRepo) ListByHostel(ctx context.Context, hostelID string) ([]model.Review, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]model.Review, 0)
	for _, rv := range all {
		if rv.HostelID == hostelID {
			matched = append(matched, rv)
		}
	}
	return matched, nil
}

// encodeReview lays a review out in canonical column order. Rating cells
// are written as numbers when present and empty cells when absent, so a
// round trip preserves the nil/value distinction.
func encodeReview(rv *model.Review) []any {
	return []any{
		rv.HostelID, rv.ReviewerID, rv.ReviewerName,
		formatRating(rv.RatingOverall), formatRating(rv.RatingFood),
		formatRating(rv.RatingCleaning), formatRating(rv.RatingStaff),
		formatRating(rv.RatingLocation), formatRating(rv.RatingOwner),
		rv.Comment, formatDate(rv.CreatedAt),
		rv.ReviewerMobile, rv.ReviewerCollege, rv.ReviewerCourse,
		rv.ReviewerAddress, rv.FeesPerYear, rv.RoomSharing,
	}
}

// decodeReview turns a raw sheet row into a Review. Returns ok=false for
// rows too narrow to carry the legacy layout — those are counted by the
// caller, never guessed at.
func decodeReview(row []string) (model.Review, bool) {
	if len(row) < legacyReviewColumns || cell(row, 0) == "" {
		return model.Review{}, false
	}
	return model.Review{
		HostelID:        cell(row, 0),
		ReviewerID:      cell(row, 1),
		ReviewerName:    cell(row, 2),
		RatingOverall:   parseRating(cell(row, 3)),
		RatingFood:      parseRating(cell(row, 4)),
		RatingCleaning:  parseRating(cell(row, 5)),
		RatingStaff:     parseRating(cell(row, 6)),
		RatingLocation:  parseRating(cell(row, 7)),
		RatingOwner:     parseRating(cell(row, 8)),
		Comment:         cell(row, 9),
		CreatedAt:       parseDate(cell(row, 10)),
		ReviewerMobile:  cell(row, 11),
		ReviewerCollege: cell(row, 12),
		ReviewerCourse:  cell(row, 13),
		ReviewerAddress: cell(row, 14),
		FeesPerYear:     cell(row, 15),
		RoomSharing:     cell(row, 16),
	}, true
}

func readReviews(f *excelize.File) (reviews []model.Review, skipped int, err error) {
	rows, err := f.GetRows(reviewSheet)
	if err != nil {
		return nil, 0, fmt.Errorf("workbook: reading %s: %w", reviewSheet, err)
	}

	reviews = make([]model.Review, 0)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rv, ok := decodeReview(row)
		if !ok {
			if len(row) > 0 && cell(row, 0) != "" {
				skipped++
			}
			continue
		}
		reviews = append(reviews, rv)
	}
	return reviews, skipped, nil
}
