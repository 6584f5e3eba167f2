// Package view renders the watchlist pages. Every page and fragment is a
// templ.Component; the markup lives in embedded html/template files so all
// user-supplied text is escaped for its HTML context.
package view

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"github.com/xiaolu2333/watchlist/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Page holds what the shared layout needs on every full page.
type Page struct {
	// OwnerName is the display name of the watchlist owner; empty before
	// any user exists.
	OwnerName string
	LoggedIn  bool
	// Flash is a one-line transient notice shown above the content.
	Flash string
}

type indexData struct {
	Page
	Movies []domain.Movie
}

type editData struct {
	Page
	Movie *domain.Movie
}

type settingsData struct {
	Page
	Name string
}

type listData struct {
	Movies   []domain.Movie
	LoggedIn bool
}

// IndexPage lists the watchlist, with the add form when logged in.
func IndexPage(p Page, movies []domain.Movie) templ.Component {
	return render("index", indexData{Page: p, Movies: movies})
}

// EditPage shows the edit form for one movie.
func EditPage(p Page, movie *domain.Movie) templ.Component {
	return render("edit", editData{Page: p, Movie: movie})
}

// LoginPage shows the login form.
func LoginPage(p Page) templ.Component {
	return render("login", p)
}

// SettingsPage shows the display-name form.
func SettingsPage(p Page, name string) templ.Component {
	return render("settings", settingsData{Page: p, Name: name})
}

// NotFoundPage is the fixed page for unknown routes and missing records.
func NotFoundPage(p Page) templ.Component {
	return render("notfound", p)
}

// MovieListFragment renders the <li> items of the movie list. It is used by
// the index page and patched into #movie-list by the search endpoint.
func MovieListFragment(movies []domain.Movie, loggedIn bool) templ.Component {
	return render("movie-items", listData{Movies: movies, LoggedIn: loggedIn})
}

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}
