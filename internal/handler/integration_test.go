package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/xiaolu2333/watchlist/internal/handler"
	"github.com/xiaolu2333/watchlist/internal/service"
)

type testApp struct {
	srv    *httptest.Server
	client *http.Client
	auth   *service.AuthService
	movies *service.MovieService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	auth, movies := newTestServices(t)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, movies, false)

	srv := httptest.NewServer(handler.RequestLogger(slog.New(slog.DiscardHandler), handler.SecurityHeaders(mux)))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}

	return &testApp{srv: srv, client: client, auth: auth, movies: movies}
}

func (a *testApp) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func (a *testApp) hasSession() bool {
	srvURL, _ := url.Parse(a.srv.URL)
	for _, c := range a.client.Jar.Cookies(srvURL) {
		if c.Name == "auth_token" {
			return true
		}
	}
	return false
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	seedOwner(t, a.auth)
	resp, _ := a.post(t, "/login", url.Values{
		"username": {testUsername},
		"password": {testPassword},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login: expected 303 redirect, got %d", resp.StatusCode)
	}
}

func (a *testApp) movieCount(t *testing.T) int {
	t.Helper()
	movies, err := a.movies.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return len(movies)
}

func TestIntegration_LoginBrowseLogout(t *testing.T) {
	app := newTestApp(t)
	seedOwner(t, app.auth)

	// 1. Anonymous index has no add form and no session.
	status, body := app.get(t, "/")
	if status != http.StatusOK {
		t.Fatalf("index: expected 200, got %d", status)
	}
	if strings.Contains(body, `name="title"`) {
		t.Fatal("anonymous index should not show the add form")
	}
	if app.hasSession() {
		t.Fatal("no session should exist before login")
	}

	// 2. Login.
	resp, _ := app.post(t, "/login", url.Values{
		"username": {testUsername},
		"password": {testPassword},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login: expected 303 redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("login: expected redirect to /, got %s", loc)
	}
	if !app.hasSession() {
		t.Fatal("expected auth_token cookie to be set after login")
	}

	// 3. The flash is shown once, then consumed.
	_, body = app.get(t, "/")
	if !strings.Contains(body, "Login success.") {
		t.Fatal("expected login flash on the index page")
	}
	if !strings.Contains(body, `name="title"`) {
		t.Fatal("logged-in index should show the add form")
	}
	_, body = app.get(t, "/")
	if strings.Contains(body, "Login success.") {
		t.Fatal("flash should be consumed by the first render")
	}

	// 4. Logout.
	status, _ = app.get(t, "/logout")
	if status != http.StatusSeeOther {
		t.Fatalf("logout: expected 303 redirect, got %d", status)
	}
	if app.hasSession() {
		t.Fatal("expected auth_token cookie to be cleared after logout")
	}
	_, body = app.get(t, "/")
	if !strings.Contains(body, "Goodbye.") {
		t.Fatal("expected logout flash on the index page")
	}

	// 5. Protected routes redirect to the login page again.
	status, _ = app.get(t, "/settings")
	if status != http.StatusSeeOther {
		t.Fatalf("settings after logout: expected 303, got %d", status)
	}
}

func TestIntegration_LoginRejected(t *testing.T) {
	app := newTestApp(t)
	seedOwner(t, app.auth)

	tests := []struct {
		name     string
		username string
		password string
		status   int
		notice   string
	}{
		{"wrong password", testUsername, "badpassword", http.StatusUnauthorized, "Invalid username or password."},
		{"wrong username", "someone", testPassword, http.StatusUnauthorized, "Invalid username or password."},
		{"empty password", testUsername, "", http.StatusUnprocessableEntity, "Invalid input."},
		{"empty username", "", testPassword, http.StatusUnprocessableEntity, "Invalid input."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := app.post(t, "/login", url.Values{
				"username": {tt.username},
				"password": {tt.password},
			})
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if !strings.Contains(body, tt.notice) {
				t.Fatalf("expected notice %q in body", tt.notice)
			}
			if app.hasSession() {
				t.Fatal("a rejected login must not create a session")
			}
		})
	}
}

func TestIntegration_LoginPageRendering(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get(t, "/login")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	for _, want := range []string{`name="username"`, `name="password"`, `action="/login"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected login page to contain %s", want)
		}
	}
}

func TestIntegration_Unauthenticated(t *testing.T) {
	app := newTestApp(t)
	seedOwner(t, app.auth)
	movie, err := app.movies.Create(context.Background(), "Leon", "1994")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := strconv.FormatInt(movie.ID, 10)

	posts := []struct {
		path string
		form url.Values
	}{
		{"/", url.Values{"title": {"Heat"}, "year": {"1995"}}},
		{"/movie/edit/" + id, url.Values{"title": {"Changed"}, "year": {"2000"}}},
		{"/movie/delete/" + id, nil},
		{"/settings", url.Values{"name": {"Intruder"}}},
	}
	for _, p := range posts {
		resp, _ := app.post(t, p.path, p.form)
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("POST %s: expected 303, got %d", p.path, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Fatalf("POST %s: expected redirect to /login, got %s", p.path, loc)
		}
	}

	got, err := app.movies.Get(context.Background(), movie.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Leon" || app.movieCount(t) != 1 {
		t.Fatalf("unauthenticated requests must not change data, got %+v", got)
	}

	_, body := app.get(t, "/login")
	if !strings.Contains(body, "Please log in to access this page.") {
		t.Fatal("expected login-required flash on the login page")
	}
}

func TestIntegration_CreateListsOnce(t *testing.T) {
	app := newTestApp(t)
	app.login(t)
	app.get(t, "/") // consume login flash

	resp, _ := app.post(t, "/", url.Values{"title": {"  Inception "}, "year": {"2010"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("create: expected 303, got %d", resp.StatusCode)
	}

	_, body := app.get(t, "/")
	if !strings.Contains(body, "Item created.") {
		t.Fatal("expected create flash")
	}
	if n := strings.Count(body, "Inception - 2010"); n != 1 {
		t.Fatalf("expected the new movie exactly once, found %d", n)
	}
	if !strings.Contains(body, "1 Titles") {
		t.Fatal("expected title count of 1")
	}
}

func TestIntegration_InvalidInputWritesNothing(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	existing, err := app.movies.Create(context.Background(), "Leon", "1994")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	editPath := "/movie/edit/" + strconv.FormatInt(existing.ID, 10)

	tests := []struct {
		name  string
		title string
		year  string
	}{
		{"empty title", "", "1994"},
		{"blank title", "   ", "1994"},
		{"empty year", "Heat", ""},
		{"long title", strings.Repeat("電", 61), "1994"},
		{"long year", "Heat", "19955"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"title": {tt.title}, "year": {tt.year}}

			resp, body := app.post(t, "/", form)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("create: expected 422, got %d", resp.StatusCode)
			}
			if !strings.Contains(body, "Invalid input.") {
				t.Fatal("create: expected invalid input notice")
			}

			resp, body = app.post(t, editPath, form)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("edit: expected 422, got %d", resp.StatusCode)
			}
			if !strings.Contains(body, `value="Leon"`) {
				t.Fatal("edit: expected the stored title in the re-rendered form")
			}

			if n := app.movieCount(t); n != 1 {
				t.Fatalf("expected 1 movie, got %d", n)
			}
			got, err := app.movies.Get(context.Background(), existing.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Title != "Leon" || got.Year != "1994" {
				t.Fatalf("movie was modified: %+v", got)
			}
		})
	}
}

func TestIntegration_EditChangesOnlyTarget(t *testing.T) {
	app := newTestApp(t)
	app.login(t)
	ctx := context.Background()

	first, err := app.movies.Create(ctx, "Leon", "1994")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := app.movies.Create(ctx, "Mahjong", "1996")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	editPath := "/movie/edit/" + strconv.FormatInt(first.ID, 10)

	status, body := app.get(t, editPath)
	if status != http.StatusOK {
		t.Fatalf("edit page: expected 200, got %d", status)
	}
	if !strings.Contains(body, `value="Leon"`) {
		t.Fatal("edit page should be pre-filled with the stored title")
	}

	resp, _ := app.post(t, editPath, url.Values{"title": {"Léon: The Professional"}, "year": {"1994"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("update: expected 303, got %d", resp.StatusCode)
	}

	got, err := app.movies.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get first: %v", err)
	}
	if got.Title != "Léon: The Professional" {
		t.Fatalf("expected updated title, got %q", got.Title)
	}
	other, err := app.movies.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("Get second: %v", err)
	}
	if other.Title != "Mahjong" || other.Year != "1996" {
		t.Fatalf("untargeted movie changed: %+v", other)
	}

	_, body = app.get(t, "/")
	if !strings.Contains(body, "Item updated.") {
		t.Fatal("expected update flash")
	}
}

func TestIntegration_DeleteRemovesOne(t *testing.T) {
	app := newTestApp(t)
	app.login(t)
	ctx := context.Background()

	first, err := app.movies.Create(ctx, "Leon", "1994")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := app.movies.Create(ctx, "Mahjong", "1996"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	deletePath := "/movie/delete/" + strconv.FormatInt(first.ID, 10)

	resp, _ := app.post(t, deletePath, nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("delete: expected 303, got %d", resp.StatusCode)
	}
	if n := app.movieCount(t); n != 1 {
		t.Fatalf("expected 1 movie left, got %d", n)
	}

	_, body := app.get(t, "/")
	if !strings.Contains(body, "Item deleted.") {
		t.Fatal("expected delete flash")
	}
	if strings.Contains(body, "Leon - 1994") {
		t.Fatal("deleted movie still listed")
	}

	resp, _ = app.post(t, deletePath, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
	if n := app.movieCount(t); n != 1 {
		t.Fatalf("expected 1 movie left, got %d", n)
	}
}

func TestIntegration_NotFound(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	for _, path := range []string{"/nonexistent", "/movie/edit/abc", "/movie/edit/0", "/movie/edit/999"} {
		status, body := app.get(t, path)
		if status != http.StatusNotFound {
			t.Fatalf("GET %s: expected 404, got %d", path, status)
		}
		if !strings.Contains(body, "Page Not Found - 404") {
			t.Fatalf("GET %s: expected the not found page", path)
		}
	}

	resp, _ := app.post(t, "/movie/edit/999", url.Values{"title": {"Heat"}, "year": {"1995"}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("update missing: expected 404, got %d", resp.StatusCode)
	}
}

func TestIntegration_Settings(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	status, body := app.get(t, "/settings")
	if status != http.StatusOK {
		t.Fatalf("settings: expected 200, got %d", status)
	}
	if !strings.Contains(body, `value="`+service.DefaultAdminName+`"`) {
		t.Fatal("settings form should be pre-filled with the current name")
	}

	resp, body := app.post(t, "/settings", url.Values{"name": {strings.Repeat("x", 21)}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid name: expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid input.") {
		t.Fatal("expected invalid input notice")
	}

	resp, _ = app.post(t, "/settings", url.Values{"name": {"Grey Li"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("update name: expected 303, got %d", resp.StatusCode)
	}

	_, body = app.get(t, "/")
	if !strings.Contains(body, "Settings updated.") {
		t.Fatal("expected settings flash")
	}
	if !strings.Contains(body, "<title>Grey Li's Watchlist</title>") {
		t.Fatal("expected the new name in the page title")
	}

	// Markup in the name is shown as text.
	resp, _ = app.post(t, "/settings", url.Values{"name": {"<b>Eve</b>"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("update name: expected 303, got %d", resp.StatusCode)
	}
	_, body = app.get(t, "/")
	if strings.Contains(body, "<b>Eve</b>") {
		t.Fatal("owner name was not escaped")
	}
	if !strings.Contains(body, "&lt;b&gt;Eve&lt;/b&gt;'s Watchlist") {
		t.Fatal("expected the escaped name in the page heading")
	}
}

func TestIntegration_SecureCookies(t *testing.T) {
	for _, secure := range []bool{true, false} {
		t.Run(strconv.FormatBool(secure), func(t *testing.T) {
			auth, movies := newTestServices(t)
			seedOwner(t, auth)

			mux := http.NewServeMux()
			handler.RegisterRoutes(mux, auth, movies, secure)

			form := url.Values{"username": {testUsername}, "password": {testPassword}}
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusSeeOther {
				t.Fatalf("login: expected 303, got %d", w.Code)
			}
			seen := map[string]bool{}
			for _, c := range w.Result().Cookies() {
				seen[c.Name] = true
				if c.Secure != secure {
					t.Fatalf("cookie %s: expected Secure=%v, got %v", c.Name, secure, c.Secure)
				}
			}
			if !seen["auth_token"] || !seen["flash"] {
				t.Fatalf("expected auth_token and flash cookies, got %v", seen)
			}
		})
	}
}

func TestIntegration_SearchPatchesList(t *testing.T) {
	app := newTestApp(t)
	if err := app.movies.SeedFixtures(context.Background()); err != nil {
		t.Fatalf("SeedFixtures: %v", err)
	}

	query := url.Values{"datastar": {`{"q":"toto"}`}}.Encode()
	resp, err := app.client.Get(app.srv.URL + "/movies/search?" + query)
	if err != nil {
		t.Fatalf("GET /movies/search: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := string(raw)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected an event stream, got %s", ct)
	}
	if !strings.Contains(body, "#movie-list") {
		t.Fatal("expected the patch to target #movie-list")
	}
	if !strings.Contains(body, "My Neighbor Totoro - 1988") {
		t.Fatal("expected the matching movie in the patch")
	}
	if strings.Contains(body, "WALL-E") {
		t.Fatal("non-matching movie should not be patched in")
	}
	if strings.Contains(body, "/movie/edit/") {
		t.Fatal("anonymous search results should not include edit links")
	}
}
