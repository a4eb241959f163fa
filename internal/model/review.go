package model

import "time"

// AnonymousReviewer is the display name used when a review carries no
// reviewer name.
const AnonymousReviewer = "Anonymous"

// Review is a user-submitted review of a hostel.
//
// WHY *float64 FOR THE RATINGS?
// Each of the six rating categories is independently optional — a reviewer
// can rate the food without rating the staff. A plain float64 can't express
// "not rated" (0 is a legal-looking value), so we use a nil pointer for
// "absent". The aggregator excludes nil ratings from averages instead of
// treating them as zero.
//
// ReviewerID may be empty: anonymous submissions carry none, and old
// workbook rows predate user accounts. The sqlite backend stores it as
// NULL in that case so the foreign key to users doesn't fire.
//
// The six profile fields (mobile through room sharing) were added after the
// first deployment. Rows written before then lack them — the workbook
// migrator backfills empty strings, and the sqlite schema adds the columns
// with a '' default (see each backend's migration code).
type Review struct {
	ID           string `json:"id"`
	HostelID     string `json:"hostelId"`
	ReviewerID   string `json:"reviewerId"`
	ReviewerName string `json:"reviewerName"`

	RatingOverall  *float64 `json:"ratingOverall"`
	RatingFood     *float64 `json:"ratingFood"`
	RatingCleaning *float64 `json:"ratingCleaning"`
	RatingStaff    *float64 `json:"ratingStaff"`
	RatingLocation *float64 `json:"ratingLocation"`
	RatingOwner    *float64 `json:"ratingOwner"`

	Comment string `json:"comment"`

	ReviewerMobile  string `json:"reviewerMobile"`
	ReviewerCollege string `json:"reviewerCollege"`
	ReviewerCourse  string `json:"reviewerCourse"`
	ReviewerAddress string `json:"reviewerAddress"`
	FeesPerYear     string `json:"feesPerYear"`
	RoomSharing     string `json:"roomSharing"`

	CreatedAt time.Time `json:"createdAt"`
}

// Averages holds the per-category average ratings for one hostel.
// A nil field means "no rating" — zero qualifying reviews for that
// category. This is deliberately distinct from a numeric 0.
type Averages struct {
	Overall  *float64 `json:"overall"`
	Food     *float64 `json:"food"`
	Cleaning *float64 `json:"cleaning"`
	Staff    *float64 `json:"staff"`
	Location *float64 `json:"location"`
	Owner    *float64 `json:"owner"`
}
