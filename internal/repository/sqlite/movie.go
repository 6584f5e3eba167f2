package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xiaolu2333/watchlist/internal/domain"
)

const movieColumns = `id, title, year, created_at, updated_at`

// MovieRepository implements domain.MovieRepository using SQLite.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new SQLite-backed MovieRepository.
func NewMovieRepository(db *DB) *MovieRepository {
	return &MovieRepository{db: db.SqlDB}
}

func (r *MovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (title, year, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		movie.Title, movie.Year, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	movie.ID = id
	movie.CreatedAt = now
	movie.UpdatedAt = now
	return nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	m := &domain.Movie{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.Year, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get movie by id: %w", err)
	}
	return m, nil
}

func (r *MovieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()
	return scanMovies(rows)
}

func (r *MovieRepository) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx)
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies
		 WHERE title LIKE ? ESCAPE '\' OR year LIKE ? ESCAPE '\'
		 ORDER BY id`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	defer rows.Close()
	return scanMovies(rows)
}

func (r *MovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE movies SET title = ?, year = ?, updated_at = ? WHERE id = ?`,
		movie.Title, movie.Year, now, movie.ID,
	)
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	movie.UpdatedAt = now
	return nil
}

func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMovies(rows *sql.Rows) ([]domain.Movie, error) {
	var movies []domain.Movie
	for rows.Next() {
		var m domain.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Year, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
