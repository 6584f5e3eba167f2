package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/xiaolu2333/watchlist/internal/domain"
	"github.com/xiaolu2333/watchlist/internal/service"
	"github.com/xiaolu2333/watchlist/internal/view"
)

const (
	noticeInvalidInput = "Invalid input."
	noticeServerError  = "An unexpected error occurred. Please try again."
)

// pageRenderer fills in the layout data shared by every full page.
type pageRenderer struct {
	auth         *service.AuthService
	cookieSecure bool
}

func newPageRenderer(auth *service.AuthService, cookieSecure bool) *pageRenderer {
	return &pageRenderer{auth: auth, cookieSecure: cookieSecure}
}

// flash queues a notice for the next full page render.
func (p *pageRenderer) flash(w http.ResponseWriter, message string) {
	setFlash(w, message, p.cookieSecure)
}

// page builds the layout data for r. A non-empty notice is shown directly;
// otherwise the pending flash cookie is consumed.
func (p *pageRenderer) page(w http.ResponseWriter, r *http.Request, notice string) view.Page {
	page := view.Page{
		LoggedIn: UserFromContext(r.Context()) != nil,
		Flash:    notice,
	}
	if notice == "" {
		page.Flash = consumeFlash(w, r, p.cookieSecure)
	}

	owner, err := p.auth.Owner(r.Context())
	switch {
	case err == nil:
		page.OwnerName = owner.Name
	case !errors.Is(err, domain.ErrNotFound):
		slog.Error("get owner", "error", err)
	}
	return page
}

// HandleNotFound renders the fixed 404 page.
func (p *pageRenderer) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, view.NotFoundPage(p.page(w, r, "")))
}

// render writes c as an HTML response with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render page", "error", err, "path", r.URL.Path)
	}
}

func serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, noticeServerError, http.StatusInternalServerError)
}
