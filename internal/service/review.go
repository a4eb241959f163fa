// Package service contains the business logic layer: validation, rating
// aggregation and orchestration between handlers and the record store.
//
// Services accept primitives and return domain errors from the apperror
// package; handlers translate those to HTTP. Services take repository
// interfaces, never concrete store types, so tests inject mocks and the
// two storage backends stay interchangeable.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/rating"
	"github.com/sadman/hostelreview/internal/repository"
)

const (
	MaxCommentLength    = 5000
	MaxHostelNameLength = 200
	MinRating           = 1
	MaxRating           = 5
)

// ReviewService handles review submission, hostel listing and the CSV
// export.
type ReviewService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewReviewService(store repository.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: logger,
	}
}

// SubmitReviewInput carries one review form submission. Rating fields are
// the raw form strings: an empty string means the category was left
// unrated, which is preserved as nil — never coerced to zero.
type SubmitReviewInput struct {
	HostelID string

	// When NewHostelName is set the hostel is created inline and
	// HostelID is ignored.
	NewHostelName     string
	NewHostelLocation string
	NewHostelImage    string

	ReviewerID string // empty for anonymous submissions

	RatingOverall  string
	RatingFood     string
	RatingCleaning string
	RatingStaff    string
	RatingLocation string
	RatingOwner    string

	Comment         string
	ReviewerMobile  string
	ReviewerCollege string
	ReviewerCourse  string
	ReviewerAddress string
	FeesPerYear     string
	RoomSharing     string
}

// Submit validates and persists one review, creating the hostel inline
// when the form named a new one. Returns the stored review.
func (s *ReviewService) Submit(ctx context.Context, in SubmitReviewInput) (*model.Review, error) {
	hostelID, err := s.resolveHostel(ctx, in)
	if err != nil {
		return nil, err
	}

	if len(in.Comment) > MaxCommentLength {
		return nil, apperror.ValidationFailed("comment",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	review := &model.Review{
		HostelID:        hostelID,
		ReviewerID:      in.ReviewerID,
		Comment:         strings.TrimSpace(in.Comment),
		ReviewerMobile:  strings.TrimSpace(in.ReviewerMobile),
		ReviewerCollege: strings.TrimSpace(in.ReviewerCollege),
		ReviewerCourse:  strings.TrimSpace(in.ReviewerCourse),
		ReviewerAddress: strings.TrimSpace(in.ReviewerAddress),
		FeesPerYear:     strings.TrimSpace(in.FeesPerYear),
		RoomSharing:     strings.TrimSpace(in.RoomSharing),
	}

	for _, rf := range []struct {
		field string
		raw   string
		dst   **float64
	}{
		{"rating_overall", in.RatingOverall, &review.RatingOverall},
		{"rating_food", in.RatingFood, &review.RatingFood},
		{"rating_cleaning", in.RatingCleaning, &review.RatingCleaning},
		{"rating_staff", in.RatingStaff, &review.RatingStaff},
		{"rating_location", in.RatingLocation, &review.RatingLocation},
		{"rating_owner", in.RatingOwner, &review.RatingOwner},
	} {
		v, err := parseRatingInput(rf.field, rf.raw)
		if err != nil {
			return nil, err
		}
		*rf.dst = v
	}

	// A logged-in reviewer's display name comes from their account; the
	// repository fills in the anonymous placeholder otherwise.
	if in.ReviewerID != "" {
		user, err := s.store.Users().FindByID(ctx, in.ReviewerID)
		if err != nil {
			return nil, fmt.Errorf("looking up reviewer: %w", err)
		}
		review.ReviewerName = user.Name
	}

	id, err := s.store.Reviews().Append(ctx, review)
	if err != nil {
		s.logger.Error("failed to store review",
			slog.String("hostelID", hostelID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("storing review: %w", err)
	}

	s.logger.Info("review submitted",
		slog.String("id", id),
		slog.String("hostelID", hostelID),
	)
	return review, nil
}

// resolveHostel returns the hostel the review belongs to, creating it
// when the form named a new one, or verifying it exists otherwise.
func (s *ReviewService) resolveHostel(ctx context.Context, in SubmitReviewInput) (string, error) {
	if name := strings.TrimSpace(in.NewHostelName); name != "" {
		if len(name) > MaxHostelNameLength {
			return "", apperror.ValidationFailed("hostel_name",
				fmt.Sprintf("hostel name must be %d characters or less", MaxHostelNameLength))
		}
		hostel := &model.Hostel{
			Name:     name,
			Location: strings.TrimSpace(in.NewHostelLocation),
			Image:    in.NewHostelImage,
		}
		id, err := s.store.Hostels().Append(ctx, hostel)
		if err != nil {
			return "", fmt.Errorf("creating hostel: %w", err)
		}
		s.logger.Info("hostel created", slog.String("id", id), slog.String("name", name))
		return id, nil
	}

	hostelID := strings.TrimSpace(in.HostelID)
	if hostelID == "" {
		return "", apperror.ValidationFailed("hostel_id", "a hostel must be selected or named")
	}
	if _, err := s.store.Hostels().FindByID(ctx, hostelID); err != nil {
		return "", err
	}
	return hostelID, nil
}

// parseRatingInput turns a raw form value into an optional rating.
// Empty input means "not rated" and comes back nil.
func parseRatingInput(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.ValidationFailed(field, "rating must be a number")
	}
	if v < MinRating || v > MaxRating {
		return nil, apperror.ValidationFailed(field,
			fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	return &v, nil
}

// HostelView is a hostel decorated with the aggregate statistics the
// listing pages show.
type HostelView struct {
	model.Hostel
	AvgRating    *float64       `json:"avg_rating"`
	Ratings      model.Averages `json:"ratings"`
	Distribution [5]int         `json:"distribution"`
	ReviewCount  int            `json:"review_count"`
	Reviews      []model.Review `json:"reviews"`
}

// ListHostels returns hostels decorated with their reviews and rating
// aggregates, optionally filtered by a case-insensitive substring match
// on name or location.
func (s *ReviewService) ListHostels(ctx context.Context, query string) ([]HostelView, error) {
	hostels, err := s.store.Hostels().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing hostels: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	views := make([]HostelView, 0, len(hostels))
	for _, h := range hostels {
		if query != "" &&
			!strings.Contains(strings.ToLower(h.Name), query) &&
			!strings.Contains(strings.ToLower(h.Location), query) {
			continue
		}

		reviews, err := s.store.Reviews().ListByHostel(ctx, h.ID)
		if err != nil {
			return nil, fmt.Errorf("listing reviews for hostel %s: %w", h.ID, err)
		}

		views = append(views, HostelView{
			Hostel:       h,
			AvgRating:    rating.Overall(reviews),
			Ratings:      rating.Averages(reviews),
			Distribution: rating.Distribution(reviews),
			ReviewCount:  len(reviews),
			Reviews:      reviews,
		})
	}
	return views, nil
}

// GetHostel returns a single decorated hostel.
func (s *ReviewService) GetHostel(ctx context.Context, id string) (*HostelView, error) {
	h, err := s.store.Hostels().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.Reviews().ListByHostel(ctx, h.ID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for hostel %s: %w", h.ID, err)
	}
	return &HostelView{
		Hostel:       *h,
		AvgRating:    rating.Overall(reviews),
		Ratings:      rating.Averages(reviews),
		Distribution: rating.Distribution(reviews),
		ReviewCount:  len(reviews),
		Reviews:      reviews,
	}, nil
}

// RawReviews returns every review in storage order, undecorated. Used by
// the admin inspection view.
func (s *ReviewService) RawReviews(ctx context.Context) ([]model.Review, error) {
	reviews, err := s.store.Reviews().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	return reviews, nil
}

// csvExportHeader is the column order of the review export.
var csvExportHeader = []string{
	"hostel_id", "reviewer_id", "reviewer_name",
	"rating_overall", "rating_food", "rating_cleaning",
	"rating_staff", "rating_location", "rating_owner",
	"comment", "date",
}

// ExportCSV streams reviews as CSV, all of them or just one hostel's when
// hostelID is non-empty. The header row is written plain; every data field
// is double-quoted with internal quotes doubled, so commas and newlines
// inside comments survive any downstream parser.
func (s *ReviewService) ExportCSV(ctx context.Context, w io.Writer, hostelID string) error {
	var (
		reviews []model.Review
		err     error
	)
	if hostelID = strings.TrimSpace(hostelID); hostelID != "" {
		if _, err = s.store.Hostels().FindByID(ctx, hostelID); err != nil {
			return err
		}
		reviews, err = s.store.Reviews().ListByHostel(ctx, hostelID)
	} else {
		reviews, err = s.store.Reviews().ListAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("exporting reviews: %w", err)
	}

	if _, err := io.WriteString(w, strings.Join(csvExportHeader, ",")+"\r\n"); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	for i := range reviews {
		rv := &reviews[i]
		fields := []string{
			rv.HostelID, rv.ReviewerID, rv.ReviewerName,
			formatExportRating(rv.RatingOverall), formatExportRating(rv.RatingFood),
			formatExportRating(rv.RatingCleaning), formatExportRating(rv.RatingStaff),
			formatExportRating(rv.RatingLocation), formatExportRating(rv.RatingOwner),
			rv.Comment, formatExportDate(rv.CreatedAt),
		}
		for j, f := range fields {
			fields[j] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		if _, err := io.WriteString(w, strings.Join(fields, ",")+"\r\n"); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}
	return nil
}

func formatExportRating(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatExportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
