package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/xiaolu2333/watchlist/internal/commands"
)

func main() {
	if err := commands.Run(context.Background(), os.Args); err != nil {
		slog.Error("watchlist", "error", err)
		os.Exit(1)
	}
}
