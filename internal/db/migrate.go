package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/unitbalance/internal/db/migrations"
)

// RunMigrations brings the audit and generation tables up to date and
// returns the resulting schema version. Already applied migrations are skipped.
func RunMigrations(ctx context.Context, dsn string) (int64, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("opening balance schema connection: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return 0, fmt.Errorf("loading embedded balance migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrating balance schema: %w", err)
	}
	for _, r := range results {
		slog.Info("balance migration applied", "version", r.Source.Version, "file", r.Source.Path, "took", r.Duration)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading balance schema version: %w", err)
	}
	return version, nil
}
