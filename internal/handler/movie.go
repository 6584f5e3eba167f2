package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"
	"github.com/xiaolu2333/watchlist/internal/domain"
	"github.com/xiaolu2333/watchlist/internal/service"
	"github.com/xiaolu2333/watchlist/internal/view"
)

// MovieHandler serves the watchlist pages and the movie form posts.
type MovieHandler struct {
	movies *service.MovieService
	pages  *pageRenderer
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(movies *service.MovieService, pages *pageRenderer) *MovieHandler {
	return &MovieHandler{movies: movies, pages: pages}
}

// HandleIndex renders the full watchlist.
// GET /
func (h *MovieHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, http.StatusOK, "")
}

// HandleCreate adds a movie from the index form.
// POST /
func (h *MovieHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, err := h.movies.Create(r.Context(), r.FormValue("title"), r.FormValue("year"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.renderIndex(w, r, http.StatusUnprocessableEntity, noticeInvalidInput)
			return
		}
		serverError(w, "create movie", err)
		return
	}

	h.pages.flash(w, "Item created.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleEditPage renders the edit form for one movie.
// GET /movie/edit/{id}
func (h *MovieHandler) HandleEditPage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.pages.HandleNotFound(w, r)
		return
	}

	movie, err := h.movies.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.pages.HandleNotFound(w, r)
			return
		}
		serverError(w, "get movie", err)
		return
	}

	render(w, r, http.StatusOK, view.EditPage(h.pages.page(w, r, ""), movie))
}

// HandleUpdate saves the edit form. Invalid input re-renders the form with
// the stored values.
// POST /movie/edit/{id}
func (h *MovieHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.pages.HandleNotFound(w, r)
		return
	}

	_, err := h.movies.Update(r.Context(), id, r.FormValue("title"), r.FormValue("year"))
	switch {
	case err == nil:
		h.pages.flash(w, "Item updated.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, domain.ErrNotFound):
		h.pages.HandleNotFound(w, r)
	case errors.Is(err, domain.ErrInvalidInput):
		movie, err := h.movies.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				h.pages.HandleNotFound(w, r)
				return
			}
			serverError(w, "get movie", err)
			return
		}
		page := h.pages.page(w, r, noticeInvalidInput)
		render(w, r, http.StatusUnprocessableEntity, view.EditPage(page, movie))
	default:
		serverError(w, "update movie", err)
	}
}

// HandleDelete removes one movie.
// POST /movie/delete/{id}
func (h *MovieHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.pages.HandleNotFound(w, r)
		return
	}

	if err := h.movies.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.pages.HandleNotFound(w, r)
			return
		}
		serverError(w, "delete movie", err)
		return
	}

	h.pages.flash(w, "Item deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type searchSignals struct {
	Q string `json:"q"`
}

// HandleSearch filters the movie list as the user types.
// GET /movies/search (datastar, signal "q")
func (h *MovieHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var signals searchSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	movies, err := h.movies.Search(r.Context(), signals.Q)
	if err != nil {
		serverError(w, "search movies", err)
		return
	}

	loggedIn := UserFromContext(r.Context()) != nil
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(
		view.MovieListFragment(movies, loggedIn),
		datastar.WithSelectorID("movie-list"),
		datastar.WithModeInner(),
	); err != nil {
		slog.Error("patch movie list", "error", err)
	}
}

func (h *MovieHandler) renderIndex(w http.ResponseWriter, r *http.Request, status int, notice string) {
	movies, err := h.movies.List(r.Context())
	if err != nil {
		serverError(w, "list movies", err)
		return
	}
	render(w, r, status, view.IndexPage(h.pages.page(w, r, notice), movies))
}

// parseID reads the {id} path value. Anything but a positive integer is
// treated as a missing record.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
