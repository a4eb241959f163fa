package handler

import (
	"log/slog"
	"net/http"

	"github.com/sadman/hostelreview/internal/auth"
	"github.com/sadman/hostelreview/internal/service"
)

// AuthHandler manages signup, login and logout. Sessions live in an
// HttpOnly JWT cookie set here and cleared on logout.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		logger: logger,
	}
}

// HandleSignup registers a new account and signs the user straight in.
//
// HTTP: POST /signup
// FORM: name, email, password, confirm_password
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "malformed form body",
		})
		return
	}

	res, err := h.auth.Signup(
		r.Context(),
		r.PostFormValue("name"),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
		r.PostFormValue("confirm_password"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, res.User)
}

// HandleLogin verifies credentials and starts a session.
//
// HTTP: POST /login
// FORM: email, password
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "malformed form body",
		})
		return
	}

	res, err := h.auth.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res.User)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
