package handler

import (
	"net/http"

	"github.com/xiaolu2333/watchlist/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. cookieSecure
// controls the Secure attribute of the session and flash cookies.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, movies *service.MovieService, cookieSecure bool) {
	pages := newPageRenderer(auth, cookieSecure)
	authHandler := NewAuthHandler(auth, pages, cookieSecure)
	movieHandler := NewMovieHandler(movies, pages)
	settingsHandler := NewSettingsHandler(auth, pages)

	optional := func(h http.HandlerFunc) http.Handler { return OptionalAuth(auth, h) }
	required := func(h http.HandlerFunc) http.Handler { return RequireAuth(auth, cookieSecure, h) }

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("GET /{$}", optional(movieHandler.HandleIndex))
	mux.Handle("POST /{$}", required(movieHandler.HandleCreate))
	mux.Handle("GET /movie/edit/{id}", required(movieHandler.HandleEditPage))
	mux.Handle("POST /movie/edit/{id}", required(movieHandler.HandleUpdate))
	mux.Handle("POST /movie/delete/{id}", required(movieHandler.HandleDelete))
	mux.Handle("GET /movies/search", optional(movieHandler.HandleSearch))

	mux.Handle("GET /login", optional(authHandler.HandleLoginPage))
	mux.Handle("POST /login", optional(authHandler.HandleLogin))
	mux.Handle("GET /logout", required(authHandler.HandleLogout))

	mux.Handle("GET /settings", required(settingsHandler.HandleSettingsPage))
	mux.Handle("POST /settings", required(settingsHandler.HandleUpdateSettings))

	mux.Handle("/", optional(pages.HandleNotFound))
}
