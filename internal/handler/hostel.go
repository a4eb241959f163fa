package handler

import (
	"log/slog"
	"net/http"

	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/service"
)

// HostelHandler serves the hostel listing, both the decorated view the
// pages use and the plain list on the API surface.
type HostelHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

func NewHostelHandler(reviews *service.ReviewService, logger *slog.Logger) *HostelHandler {
	return &HostelHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// HandleList returns hostels decorated with rating aggregates and their
// reviews, optionally filtered.
//
// HTTP: GET /hostels?q=<search>
func (h *HostelHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.reviews.ListHostels(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("listing hostels failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGet returns one decorated hostel.
//
// HTTP: GET /hostels/{id}
func (h *HostelHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.reviews.GetHostel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleAPIList returns the undecorated hostel list.
//
// HTTP: GET /api/hostels
func (h *HostelHandler) HandleAPIList(w http.ResponseWriter, r *http.Request) {
	views, err := h.reviews.ListHostels(r.Context(), "")
	if err != nil {
		h.logger.Error("listing hostels failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	hostels := make([]model.Hostel, 0, len(views))
	for _, v := range views {
		hostels = append(hostels, v.Hostel)
	}
	writeJSON(w, http.StatusOK, hostels)
}
