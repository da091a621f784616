// Command migrate applies the embedded schema migrations.
//
//	migrate [up|down]
package main

import (
	"errors"
	"log/slog"
	"os"

	"conreach/config"
	"conreach/internal/db/migrate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Server)

	arg := "up"
	if len(os.Args) > 1 {
		arg = os.Args[1]
	}
	direction, err := migrate.ParseDirection(arg)
	if err != nil {
		logger.Error("invalid arguments", "err", err)
		os.Exit(2)
	}
	if err := migrate.Run(cfg.DB.URL, direction); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migration failed", "direction", direction, "err", err)
		os.Exit(1)
	}
	logger.Info("migrations applied", "direction", direction)
}
