package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"halalai/cmd/internal/migrations"
)

// RunMigrations applies the embedded goose migrations against the pool's
// database. It opens a throwaway database/sql handle over the pool; the
// pool itself stays open.
func RunMigrations(ctx context.Context, log Logger, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Info("db.migrations.ok")
	return nil
}
