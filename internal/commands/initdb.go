package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

func initdbCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "initdb",
		Usage: "Initialize the database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "drop",
				Usage: "Drop all tables before creating them",
			},
		},
		Action: r.InitDB,
	}
}

// InitDB creates the schema, optionally dropping every table first.
func (r *Runner) InitDB(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.setup(cmd)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("drop") {
		if err := db.Reset(ctx); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		slog.Debug("dropped all tables")
	}

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	r.println("Initialized database.")
	return nil
}
