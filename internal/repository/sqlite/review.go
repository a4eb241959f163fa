package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/repository"
)

var _ repository.ReviewRepository = (*reviewRepo)(nil)

type reviewRepo struct {
	conn *sql.DB
}

const reviewColumns = `id, hostel_id, reviewer_id, reviewer_name,
	rating_overall, rating_food, rating_cleaning, rating_staff, rating_location, rating_owner,
	comment, reviewer_mobile, reviewer_college, reviewer_course, reviewer_address,
	fees_per_year, room_sharing, created_at`

// Append inserts a review. The rating pointers pass through as-is:
// database/sql writes a nil *float64 as NULL, which is exactly the
// "not rated" representation the aggregator expects back.
//
// A foreign key violation (unknown hostel or user) is translated to
// apperror.ErrNotFound — the relational backend enforces the write-time
// referential invariant that the workbook backend only checks in the
// service layer.
func (r *reviewRepo) Append(ctx context.Context, review *model.Review) (string, error) {
	if review.ID == "" {
		review.ID = xid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	if review.ReviewerName == "" {
		review.ReviewerName = model.AnonymousReviewer
	}

	// Anonymous reviews carry no reviewer: store NULL, not '', so the
	// foreign key to users doesn't fire on an empty string.
	var reviewerID sql.NullString
	if review.ReviewerID != "" {
		reviewerID = sql.NullString{String: review.ReviewerID, Valid: true}
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO reviews (`+reviewColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.HostelID, reviewerID, review.ReviewerName,
		review.RatingOverall, review.RatingFood, review.RatingCleaning,
		review.RatingStaff, review.RatingLocation, review.RatingOwner,
		review.Comment, review.ReviewerMobile, review.ReviewerCollege,
		review.ReviewerCourse, review.ReviewerAddress, review.FeesPerYear,
		review.RoomSharing, review.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return "", apperror.NotFound("hostel or user", review.HostelID)
		}
		return "", fmt.Errorf("sqlite: inserting review: %w", err)
	}

	return review.ID, nil
}

func (r *reviewRepo) ListAll(ctx context.Context) ([]model.Review, error) {
	return r.list(ctx, ``)
}

func (r *reviewRepo) ListByHostel(ctx context.Context, hostelID string) ([]model.Review, error) {
	return r.list(ctx, `WHERE hostel_id = ?`, hostelID)
}

func (r *reviewRepo) list(ctx context.Context, where string, args ...any) ([]model.Review, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews `+where+` ORDER BY created_at`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0)
	for rows.Next() {
		var rv model.Review
		var reviewerID sql.NullString
		var overall, food, cleaning, staff, location, owner sql.NullFloat64
		if err := rows.Scan(
			&rv.ID, &rv.HostelID, &reviewerID, &rv.ReviewerName,
			&overall, &food, &cleaning, &staff, &location, &owner,
			&rv.Comment, &rv.ReviewerMobile, &rv.ReviewerCollege,
			&rv.ReviewerCourse, &rv.ReviewerAddress, &rv.FeesPerYear,
			&rv.RoomSharing, &rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		rv.ReviewerID = reviewerID.String
		rv.RatingOverall = floatOrNil(overall)
		rv.RatingFood = floatOrNil(food)
		rv.RatingCleaning = floatOrNil(cleaning)
		rv.RatingStaff = floatOrNil(staff)
		rv.RatingLocation = floatOrNil(location)
		rv.RatingOwner = floatOrNil(owner)
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}

	return reviews, nil
}
