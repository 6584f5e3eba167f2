package handler

import (
	"errors"
	"net/http"

	"github.com/xiaolu2333/watchlist/internal/domain"
	"github.com/xiaolu2333/watchlist/internal/service"
	"github.com/xiaolu2333/watchlist/internal/view"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	auth         *service.AuthService
	pages        *pageRenderer
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, pages *pageRenderer, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, pages: pages, cookieSecure: cookieSecure}
}

// HandleLoginPage renders the login form.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, view.LoginPage(h.pages.page(w, r, "")))
}

// HandleLogin checks the submitted credentials and starts a session.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	token, err := h.auth.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			render(w, r, http.StatusUnprocessableEntity, view.LoginPage(h.pages.page(w, r, noticeInvalidInput)))
		case errors.Is(err, domain.ErrUnauthorized):
			render(w, r, http.StatusUnauthorized, view.LoginPage(h.pages.page(w, r, "Invalid username or password.")))
		default:
			serverError(w, "login user", err)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.SessionTTL().Seconds()),
	})

	h.pages.flash(w, "Login success.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
// GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	h.pages.flash(w, "Goodbye.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
