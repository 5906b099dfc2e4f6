package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/haras-web/internal/persistence/migrations"
)

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// RunMigrations applies the embedded goose migrations through the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	// The *sql.DB keeps no idle connections of its own; the pool owns them.
	db := stdlib.OpenDBFromPool(pool)
	if err := gooseUp(ctx, db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	logger.Info("migrations applied")
	return nil
}

// EnsureSchema runs migrations once and, if that fails, keeps retrying in the
// background until it succeeds or ctx is cancelled. The service keeps serving
// in degraded mode meanwhile.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger, retryEvery time.Duration) {
	goose.SetLogger(zap.NewStdLog(logger.Named("goose")))

	err := RunMigrations(ctx, pool, logger)
	if err == nil {
		return
	}
	logger.Error("schema migration failed; retrying in background", zap.Error(err))

	go func() {
		ticker := time.NewTicker(retryEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			err := RunMigrations(ctx, pool, logger)
			if err == nil {
				return
			}
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Warn("schema migration retry failed", zap.Error(err))
		}
	}()
}
