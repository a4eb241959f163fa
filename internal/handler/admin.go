package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sadman/hostelreview/internal/service"
)

// AdminHandler exposes the maintenance surface: raw review inspection,
// schema migration and the backup lifecycle. Routing guards these with
// RequireAuth + RequireAdmin; the handler itself assumes an admin caller.
type AdminHandler struct {
	admin   *service.AdminService
	reviews *service.ReviewService
	logger  *slog.Logger
}

func NewAdminHandler(admin *service.AdminService, reviews *service.ReviewService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:   admin,
		reviews: reviews,
		logger:  logger,
	}
}

// HandleRawReviews returns every stored review, undecorated, for
// inspecting what migration would operate on.
//
// HTTP: GET /admin/reviews
func (h *AdminHandler) HandleRawReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.RawReviews(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// HandleMigrate runs the review schema migration and reports counts.
//
// HTTP: POST /admin/migrate
// RESPONSE: {"migrated": 12, "skipped": 1, "backupSheet": "Reviews_backup_..."}
func (h *AdminHandler) HandleMigrate(w http.ResponseWriter, r *http.Request) {
	res, err := h.admin.Migrate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleListBackups lists available backups, newest first.
//
// HTTP: GET /admin/backups
func (h *AdminHandler) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.admin.ListBackups()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

// HandleCreateBackup snapshots the live document.
//
// HTTP: POST /admin/backups
// RESPONSE: {"name": "hostels_backup_20240101_120000.xlsx"}
func (h *AdminHandler) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	name, err := h.admin.CreateBackup()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

// HandleDownloadBackup serves a backup file. The service validates the
// name against the backup pattern before any path is touched.
//
// HTTP: GET /admin/backups/{name}
func (h *AdminHandler) HandleDownloadBackup(w http.ResponseWriter, r *http.Request) {
	path, err := h.admin.BackupFile(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+r.PathValue("name")+`"`)
	http.ServeFile(w, r, path)
}

// HandleRestore replaces the live document with the named backup. The
// caller must send confirm=true; restoring is destructive.
//
// HTTP: POST /admin/backups/{name}/restore?confirm=true
func (h *AdminHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	confirm, _ := strconv.ParseBool(r.FormValue("confirm"))

	if err := h.admin.Restore(name, confirm); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("restore completed", slog.String("name", name))
	writeJSON(w, http.StatusOK, map[string]string{"restored": name})
}
