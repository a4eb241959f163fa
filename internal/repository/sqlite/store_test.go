package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/model"
)

// newTestStore opens a fresh in-memory database for one test.
// ":memory:" means no disk I/O and automatic destruction on close.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "hash", Name: "Test User"}
	if _, err := s.Users().Append(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func createTestHostel(t *testing.T, s *Store, name, location string) *model.Hostel {
	t.Helper()
	h := &model.Hostel{Name: name, Location: location}
	if _, err := s.Hostels().Append(context.Background(), h); err != nil {
		t.Fatalf("failed to create test hostel: %v", err)
	}
	return h
}

func fptr(v float64) *float64 { return &v }

// =========================================================================
// SCHEMA / SEED TESTS
// =========================================================================

func TestNew_SeedsTwoHostels(t *testing.T) {
	s := newTestStore(t)

	hostels, err := s.Hostels().ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(hostels) != 2 {
		t.Errorf("fresh store has %d hostels, want 2 seed rows", len(hostels))
	}
}

func TestMigrate_Rerunnable(t *testing.T) {
	s := newTestStore(t)

	// Running the migration again on an initialized schema must be a no-op.
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}

	hostels, err := s.Hostels().ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(hostels) != 2 {
		t.Errorf("re-migration changed seed count: got %d hostels, want 2", len(hostels))
	}
}

// =========================================================================
// USER TESTS
// =========================================================================

func TestUserAppend_AssignsID(t *testing.T) {
	s := newTestStore(t)

	u := &model.User{Email: "a@example.com", PasswordHash: "h", Name: "A"}
	id, err := s.Users().Append(context.Background(), u)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id == "" || u.ID != id {
		t.Errorf("Append() id = %q, struct ID = %q; want matching non-empty ids", id, u.ID)
	}
	if u.CreatedAt.IsZero() {
		t.Error("Append() did not set CreatedAt")
	}
}

func TestUserAppend_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "dup@example.com")

	_, err := s.Users().Append(context.Background(),
		&model.User{Email: "dup@example.com", PasswordHash: "h", Name: "B"})
	if err == nil {
		t.Fatal("Append() should reject a duplicate email")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestUserFindByEmail(t *testing.T) {
	s := newTestStore(t)
	created := createTestUser(t, s, "find@example.com")

	found, err := s.Users().FindByEmail(context.Background(), "find@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	_, err = s.Users().FindByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing email: error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// HOSTEL TESTS
// =========================================================================

func TestHostelAppendAndFind(t *testing.T) {
	s := newTestStore(t)
	created := createTestHostel(t, s, "Lakeside Hostel", "Pokhara")

	found, err := s.Hostels().FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Name != "Lakeside Hostel" || found.Location != "Pokhara" {
		t.Errorf("got %q/%q, want Lakeside Hostel/Pokhara", found.Name, found.Location)
	}
}

func TestHostelFindByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Hostels().FindByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// REVIEW TESTS
// =========================================================================

func TestReviewAppend_RoundTripsMissingRatings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "rev@example.com")
	hostel := createTestHostel(t, s, "Rated Hostel", "Kathmandu")

	rv := &model.Review{
		HostelID:      hostel.ID,
		ReviewerID:    user.ID,
		ReviewerName:  "Rita",
		RatingOverall: fptr(4),
		RatingFood:    fptr(5),
		// the other four categories deliberately absent
		Comment: "Great stay",
	}
	if _, err := s.Reviews().Append(ctx, rv); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reviews, err := s.Reviews().ListByHostel(ctx, hostel.ID)
	if err != nil {
		t.Fatalf("ListByHostel() error = %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(reviews))
	}

	got := reviews[0]
	if got.RatingOverall == nil || *got.RatingOverall != 4 {
		t.Errorf("RatingOverall = %v, want 4", got.RatingOverall)
	}
	if got.RatingFood == nil || *got.RatingFood != 5 {
		t.Errorf("RatingFood = %v, want 5", got.RatingFood)
	}
	// NULL must come back as nil, never as zero.
	if got.RatingCleaning != nil || got.RatingStaff != nil ||
		got.RatingLocation != nil || got.RatingOwner != nil {
		t.Errorf("absent ratings came back non-nil: %+v", got)
	}
	if got.Comment != "Great stay" {
		t.Errorf("Comment = %q, want %q", got.Comment, "Great stay")
	}
}

func TestReviewAppend_DefaultsAnonymousName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "anon@example.com")
	hostel := createTestHostel(t, s, "Quiet Hostel", "Butwal")

	rv := &model.Review{HostelID: hostel.ID, ReviewerID: user.ID}
	if _, err := s.Reviews().Append(ctx, rv); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if rv.ReviewerName != model.AnonymousReviewer {
		t.Errorf("ReviewerName = %q, want %q", rv.ReviewerName, model.AnonymousReviewer)
	}
}

func TestReviewAppend_AnonymousReviewer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	hostel := createTestHostel(t, s, "Open Hostel", "Dharan")

	// No ReviewerID at all: stored as NULL so the users foreign key
	// doesn't fire, and read back as the empty string.
	if _, err := s.Reviews().Append(ctx, &model.Review{HostelID: hostel.ID, RatingOverall: fptr(3)}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reviews, err := s.Reviews().ListByHostel(ctx, hostel.ID)
	if err != nil {
		t.Fatalf("ListByHostel() error = %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(reviews))
	}
	if reviews[0].ReviewerID != "" {
		t.Errorf("ReviewerID = %q, want empty for anonymous review", reviews[0].ReviewerID)
	}
	if reviews[0].ReviewerName != model.AnonymousReviewer {
		t.Errorf("ReviewerName = %q, want %q", reviews[0].ReviewerName, model.AnonymousReviewer)
	}
}

func TestReviewAppend_UnknownHostelRejected(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "fk@example.com")

	_, err := s.Reviews().Append(context.Background(), &model.Review{
		HostelID:   "no-such-hostel",
		ReviewerID: user.ID,
	})
	if err == nil {
		t.Fatal("Append() should fail the foreign key check for an unknown hostel")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestReviewListByHostel_FiltersOtherHostels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "filter@example.com")
	h1 := createTestHostel(t, s, "First", "A")
	h2 := createTestHostel(t, s, "Second", "B")

	for i := 0; i < 3; i++ {
		if _, err := s.Reviews().Append(ctx, &model.Review{HostelID: h1.ID, ReviewerID: user.ID}); err != nil {
			t.Fatalf("Append h1: %v", err)
		}
	}
	if _, err := s.Reviews().Append(ctx, &model.Review{HostelID: h2.ID, ReviewerID: user.ID}); err != nil {
		t.Fatalf("Append h2: %v", err)
	}

	got, err := s.Reviews().ListByHostel(ctx, h1.ID)
	if err != nil {
		t.Fatalf("ListByHostel() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("ListByHostel(h1) returned %d reviews, want 3", len(got))
	}

	all, err := s.Reviews().ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ListAll() returned %d reviews, want 4", len(all))
	}
}
