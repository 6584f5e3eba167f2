package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"github.com/xiaolu2333/watchlist/internal/service"
)

func forgeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "forge",
		Usage:  "Recreate the database with demonstration data",
		Action: r.Forge,
	}
}

// Forge drops every table, recreates the schema, and inserts the fixture
// owner and movies.
func (r *Runner) Forge(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.setup(cmd)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Reset(ctx); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	auth := service.NewAuthService(db.Users(), cfg.Auth.SecretKey, cfg.Auth.BcryptCost, cfg.Auth.SessionTTL.Duration)
	if _, err := auth.EnsureOwner(ctx, service.FixtureOwnerName); err != nil {
		return fmt.Errorf("create owner: %w", err)
	}

	if err := service.NewMovieService(db.Movies()).SeedFixtures(ctx); err != nil {
		return err
	}

	r.println("Done.")
	return nil
}
