package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sadman/hostelreview/internal/auth"
	"github.com/sadman/hostelreview/internal/service"
	"github.com/sadman/hostelreview/internal/upload"
)

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to temp files.
const maxUploadMemory = 10 << 20 // 10 MB

// ReviewHandler accepts review submissions and serves the CSV export.
type ReviewHandler struct {
	reviews *service.ReviewService
	uploads *upload.Storage
	logger  *slog.Logger
}

func NewReviewHandler(reviews *service.ReviewService, uploads *upload.Storage, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		uploads: uploads,
		logger:  logger,
	}
}

// HandleSubmit stores one review.
//
// HTTP: POST /reviews (multipart form)
// FORM: hostel_id OR hostel_name (+hostel_location, image), the six
// rating_* fields, comment, and the reviewer profile fields. All rating
// fields are optional; empty means unrated.
func (h *ReviewHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	// Plain urlencoded forms are accepted too; only actual parse
	// failures are rejected.
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "malformed form body",
		})
		return
	}

	imagePath, err := h.saveUploadedImage(r)
	if err != nil {
		h.logger.Error("image upload failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	reviewerID, _ := auth.UserIDFromContext(r.Context())

	in := service.SubmitReviewInput{
		HostelID:          r.PostFormValue("hostel_id"),
		NewHostelName:     r.PostFormValue("hostel_name"),
		NewHostelLocation: r.PostFormValue("hostel_location"),
		NewHostelImage:    imagePath,
		ReviewerID:        reviewerID,
		RatingOverall:     r.PostFormValue("rating_overall"),
		RatingFood:        r.PostFormValue("rating_food"),
		RatingCleaning:    r.PostFormValue("rating_cleaning"),
		RatingStaff:       r.PostFormValue("rating_staff"),
		RatingLocation:    r.PostFormValue("rating_location"),
		RatingOwner:       r.PostFormValue("rating_owner"),
		Comment:           r.PostFormValue("comment"),
		ReviewerMobile:    r.PostFormValue("reviewer_mobile"),
		ReviewerCollege:   r.PostFormValue("reviewer_college"),
		ReviewerCourse:    r.PostFormValue("reviewer_course"),
		ReviewerAddress:   r.PostFormValue("reviewer_address"),
		FeesPerYear:       r.PostFormValue("fees_per_year"),
		RoomSharing:       r.PostFormValue("room_sharing"),
	}

	review, err := h.reviews.Submit(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// saveUploadedImage stores the optional "image" form file and returns its
// URL path, or "" when no file was sent.
func (h *ReviewHandler) saveUploadedImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.uploads.SaveImage(file, header.Filename)
}

// HandleExportCSV streams reviews as a CSV attachment.
//
// HTTP: GET /export/reviews.csv?hostel_id=  (filter optional)
//
// The export is built in memory first so a storage failure can still
// produce a proper error response instead of a truncated download.
func (h *ReviewHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.reviews.ExportCSV(r.Context(), &buf, r.URL.Query().Get("hostel_id")); err != nil {
		h.logger.Error("CSV export failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="reviews.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("writing CSV response", slog.String("error", err.Error()))
	}
}
