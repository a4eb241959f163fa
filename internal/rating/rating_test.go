package rating

import (
	"testing"

	"github.com/sadman/hostelreview/internal/model"
)

func fptr(v float64) *float64 { return &v }

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		reviews []model.Review
		want    *float64
	}{
		{
			name:    "no reviews",
			reviews: nil,
			want:    nil,
		},
		{
			name: "no overall ratings",
			reviews: []model.Review{
				{RatingFood: fptr(5)},
				{Comment: "nice"},
			},
			want: nil,
		},
		{
			name: "single rating",
			reviews: []model.Review{
				{RatingOverall: fptr(4)},
			},
			want: fptr(4),
		},
		{
			name: "mean of two",
			reviews: []model.Review{
				{RatingOverall: fptr(3)},
				{RatingOverall: fptr(5)},
			},
			want: fptr(4),
		},
		{
			name: "unrated reviews excluded from the mean",
			reviews: []model.Review{
				{RatingOverall: fptr(5)},
				{RatingFood: fptr(1)}, // rated food, not overall
			},
			want: fptr(5),
		},
		{
			name: "rounded to two decimals",
			reviews: []model.Review{
				{RatingOverall: fptr(5)},
				{RatingOverall: fptr(4)},
				{RatingOverall: fptr(4)},
			},
			want: fptr(4.33),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overall(tt.reviews)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Overall() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Overall() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestAverages_CategoriesIndependent(t *testing.T) {
	reviews := []model.Review{
		{RatingOverall: fptr(4), RatingFood: fptr(5)},
		{RatingOverall: fptr(2)},
		{RatingFood: fptr(3), RatingStaff: fptr(4)},
	}

	avgs := Averages(reviews)

	if avgs.Overall == nil || *avgs.Overall != 3 {
		t.Errorf("Overall = %v, want 3", avgs.Overall)
	}
	if avgs.Food == nil || *avgs.Food != 4 {
		t.Errorf("Food = %v, want 4", avgs.Food)
	}
	if avgs.Staff == nil || *avgs.Staff != 4 {
		t.Errorf("Staff = %v, want 4", avgs.Staff)
	}
	// Nobody rated these; they must be absent, not zero.
	if avgs.Cleaning != nil {
		t.Errorf("Cleaning = %v, want nil", avgs.Cleaning)
	}
	if avgs.Location != nil {
		t.Errorf("Location = %v, want nil", avgs.Location)
	}
	if avgs.Owner != nil {
		t.Errorf("Owner = %v, want nil", avgs.Owner)
	}
}

func TestAverages_Empty(t *testing.T) {
	avgs := Averages(nil)
	for name, v := range map[string]*float64{
		"Overall":  avgs.Overall,
		"Food":     avgs.Food,
		"Cleaning": avgs.Cleaning,
		"Staff":    avgs.Staff,
		"Location": avgs.Location,
		"Owner":    avgs.Owner,
	} {
		if v != nil {
			t.Errorf("%s = %v, want nil for no reviews", name, *v)
		}
	}
}

func TestDistribution(t *testing.T) {
	reviews := []model.Review{
		{RatingOverall: fptr(5)},
		{RatingOverall: fptr(5)},
		{RatingOverall: fptr(4.5)}, // truncates to 4, never rounds up
		{RatingOverall: fptr(3.2)}, // truncates to 3
		{RatingOverall: fptr(1)},
		{RatingOverall: fptr(0.9)}, // truncates below 1 star: ignored
		{RatingOverall: fptr(9)},   // junk above 5 stars: ignored
		{RatingFood: fptr(5)},      // no overall rating: not counted
	}

	got := Distribution(reviews)
	want := [5]int{1, 0, 1, 1, 2}
	if got != want {
		t.Errorf("Distribution() = %v, want %v", got, want)
	}
}

func TestRound2_HalfAwayFromZero(t *testing.T) {
	reviews := []model.Review{
		{RatingOverall: fptr(4.125)},
		{RatingOverall: fptr(4.125)},
	}
	got := Overall(reviews)
	if got == nil || *got != 4.13 {
		t.Errorf("Overall() = %v, want 4.13", got)
	}
}
