// Package rating computes aggregate statistics over a hostel's reviews.
//
// Every rating category is independently optional: a review that rates the
// food but nothing else still contributes to the food average. "No rating"
// is represented as a nil pointer throughout and is never treated as zero —
// a hostel whose reviews skip a category has no average for that category,
// which is a different statement than averaging to 0.
package rating

import (
	"math"

	"github.com/sadman/hostelreview/internal/model"
)

// Overall returns the mean of the overall ratings across reviews, rounded
// to two decimals, or nil when no review carries an overall rating.
func Overall(reviews []model.Review) *float64 {
	return mean(reviews, func(r *model.Review) *float64 { return r.RatingOverall })
}

// Averages computes the per-category means across reviews. Each category
// is averaged only over the reviews that actually rated it.
func Averages(reviews []model.Review) model.Averages {
	return model.Averages{
		Overall:  mean(reviews, func(r *model.Review) *float64 { return r.RatingOverall }),
		Food:     mean(reviews, func(r *model.Review) *float64 { return r.RatingFood }),
		Cleaning: mean(reviews, func(r *model.Review) *float64 { return r.RatingCleaning }),
		Staff:    mean(reviews, func(r *model.Review) *float64 { return r.RatingStaff }),
		Location: mean(reviews, func(r *model.Review) *float64 { return r.RatingLocation }),
		Owner:    mean(reviews, func(r *model.Review) *float64 { return r.RatingOwner }),
	}
}

// Distribution buckets the overall ratings into star counts. Index 0 holds
// one-star reviews, index 4 five-star. Fractional ratings are truncated to
// their integer star, so a 4.5 counts as four stars; reviews without an
// overall rating, or with junk values whose truncation falls outside 1–5,
// are not counted anywhere.
func Distribution(reviews []model.Review) [5]int {
	var dist [5]int
	for i := range reviews {
		v := reviews[i].RatingOverall
		if v == nil {
			continue
		}
		star := int(*v)
		if star < 1 || star > 5 {
			continue
		}
		dist[star-1]++
	}
	return dist
}

// mean averages one category over the reviews that rated it. Returns nil
// when no review did.
func mean(reviews []model.Review, pick func(*model.Review) *float64) *float64 {
	sum := 0.0
	n := 0
	for i := range reviews {
		if v := pick(&reviews[i]); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := round2(sum / float64(n))
	return &avg
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
