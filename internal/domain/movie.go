package domain

import (
	"context"
	"time"
)

const (
	MaxTitleLength = 60
	MaxYearLength  = 4
)

// Movie is one entry of the watchlist.
type Movie struct {
	ID        int64
	Title     string
	Year      string // Free text, only length-checked
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MovieRepository interface {
	Create(ctx context.Context, movie *Movie) error
	GetByID(ctx context.Context, id int64) (*Movie, error)
	List(ctx context.Context) ([]Movie, error)
	// Search matches query case-insensitively against title and year.
	Search(ctx context.Context, query string) ([]Movie, error)
	Update(ctx context.Context, movie *Movie) error
	Delete(ctx context.Context, id int64) error
}
