package handler

import (
	"errors"
	"net/http"

	"github.com/xiaolu2333/watchlist/internal/domain"
	"github.com/xiaolu2333/watchlist/internal/service"
	"github.com/xiaolu2333/watchlist/internal/view"
)

// SettingsHandler lets the owner change their display name.
type SettingsHandler struct {
	auth  *service.AuthService
	pages *pageRenderer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(auth *service.AuthService, pages *pageRenderer) *SettingsHandler {
	return &SettingsHandler{auth: auth, pages: pages}
}

// HandleSettingsPage renders the display-name form.
// GET /settings
func (h *SettingsHandler) HandleSettingsPage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	render(w, r, http.StatusOK, view.SettingsPage(h.pages.page(w, r, ""), user.Name))
}

// HandleUpdateSettings saves a new display name.
// POST /settings
func (h *SettingsHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if _, err := h.auth.UpdateName(r.Context(), user.ID, r.FormValue("name")); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			page := h.pages.page(w, r, noticeInvalidInput)
			render(w, r, http.StatusUnprocessableEntity, view.SettingsPage(page, user.Name))
			return
		}
		serverError(w, "update name", err)
		return
	}

	h.pages.flash(w, "Settings updated.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
