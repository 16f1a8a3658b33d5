package main

// Apply or inspect schema migrations:
//   go run ./cmd/migrate [up|down|status|version]

import (
	"context"
	"os"

	"legal-backend/internal/shared/config"
	"legal-backend/internal/shared/storage/db"
	"legal-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	os.Exit(run(context.Background(), cfg, command))
}

func run(ctx context.Context, cfg config.Config, command string) int {
	opts := db.DefaultMigrateOptions().Override(db.PoolOptions(cfg.DBPool))
	opts.MaxOpenConns = 1
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		return 1
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err})
		return 1
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
	return 0
}
