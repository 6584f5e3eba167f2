package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xiaolu2333/watchlist/internal/domain"
)

// MovieService handles watchlist entries.
type MovieService struct {
	movies domain.MovieRepository
}

// NewMovieService creates a new MovieService.
func NewMovieService(movies domain.MovieRepository) *MovieService {
	return &MovieService{movies: movies}
}

// List returns every movie in insertion order.
func (s *MovieService) List(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.List(ctx)
}

// Search returns the movies whose title or year contains query.
func (s *MovieService) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	return s.movies.Search(ctx, query)
}

// Get returns a movie by its ID.
func (s *MovieService) Get(ctx context.Context, id int64) (*domain.Movie, error) {
	return s.movies.GetByID(ctx, id)
}

// Create validates and stores a new movie.
func (s *MovieService) Create(ctx context.Context, title, year string) (*domain.Movie, error) {
	title, year, err := normalizeMovie(title, year)
	if err != nil {
		return nil, err
	}

	movie := &domain.Movie{Title: title, Year: year}
	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	return movie, nil
}

// Update validates and replaces the title and year of an existing movie.
// Invalid input is rejected before the stored record is looked up.
func (s *MovieService) Update(ctx context.Context, id int64, title, year string) (*domain.Movie, error) {
	title, year, err := normalizeMovie(title, year)
	if err != nil {
		return nil, err
	}

	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	movie.Title = title
	movie.Year = year
	if err := s.movies.Update(ctx, movie); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	return movie, nil
}

// Delete removes a movie. Returns ErrNotFound if it does not exist.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	return s.movies.Delete(ctx, id)
}

// SeedFixtures inserts the demonstration movies.
func (s *MovieService) SeedFixtures(ctx context.Context) error {
	for _, m := range fixtureMovies {
		if err := s.movies.Create(ctx, &m); err != nil {
			return fmt.Errorf("seed movie %s: %w", m.Title, err)
		}
	}
	return nil
}

// FixtureMovies returns a copy of the demonstration movie list.
func FixtureMovies() []domain.Movie {
	return append([]domain.Movie(nil), fixtureMovies...)
}

func normalizeMovie(title, year string) (string, string, error) {
	title = strings.TrimSpace(title)
	year = strings.TrimSpace(year)
	if title == "" || year == "" {
		return "", "", fmt.Errorf("%w: title and year are required", domain.ErrInvalidInput)
	}
	if runeLen(title) > domain.MaxTitleLength {
		return "", "", fmt.Errorf("%w: title must be %d characters or fewer", domain.ErrInvalidInput, domain.MaxTitleLength)
	}
	if runeLen(year) > domain.MaxYearLength {
		return "", "", fmt.Errorf("%w: year must be %d characters or fewer", domain.ErrInvalidInput, domain.MaxYearLength)
	}
	return title, year, nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// FixtureOwnerName is the display name of the owner created with the fixtures.
const FixtureOwnerName = "Grey Li"

var fixtureMovies = []domain.Movie{
	{Title: "My Neighbor Totoro", Year: "1988"},
	{Title: "Dead Poets Society", Year: "1989"},
	{Title: "A Perfect World", Year: "1993"},
	{Title: "Leon", Year: "1994"},
	{Title: "Mahjong", Year: "1996"},
	{Title: "Swallowtail Butterfly", Year: "1996"},
	{Title: "King of Comedy", Year: "1999"},
	{Title: "Devils on the Doorstep", Year: "1999"},
	{Title: "WALL-E", Year: "2008"},
	{Title: "The Pork of Music", Year: "2012"},
}
