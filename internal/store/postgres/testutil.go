package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"

	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/store/migrations"
)

// WithTestPool spins up a dedicated, migrated Postgres database for the
// duration of action, following the teacher's WithTestDb pattern. If
// cfgOverride is non-nil the caller's own instance is used instead and is
// not torn down afterwards.
func WithTestPool(cfgOverride *config.PostgresConfig, action func(pool *pgxpool.Pool) error) error {
	ctx := context.Background()

	var testPool *pgxpool.Pool
	if cfgOverride != nil {
		pool, err := OpenPool(ctx, *cfgOverride)
		if err != nil {
			return errors.WithStack(err)
		}
		defer pool.Close()
		testPool = pool
	} else {
		dbName := "eventflow_test_" + uuid.New().String()[:8]
		connectionString := "host=localhost port=5432 user=postgres password=postgres sslmode=disable"

		admin, err := pgx.Connect(ctx, connectionString)
		if err != nil {
			return errors.WithStack(err)
		}
		defer admin.Close(ctx)

		if _, err := admin.Exec(ctx, "CREATE DATABASE "+dbName); err != nil {
			return errors.WithStack(err)
		}
		defer func() {
			_, _ = admin.Exec(ctx, fmt.Sprintf(
				`SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s'`, dbName))
			_, _ = admin.Exec(ctx, "DROP DATABASE "+dbName)
		}()

		pool, err := pgxpool.Connect(ctx, connectionString+" dbname="+dbName)
		if err != nil {
			return errors.WithStack(err)
		}
		defer pool.Close()
		testPool = pool
	}

	migs, err := migrations.Load()
	if err != nil {
		return errors.WithStack(err)
	}
	for _, m := range migs {
		if _, err := testPool.Exec(ctx, m.SQL); err != nil {
			return errors.WithStack(err)
		}
	}

	return action(testPool)
}
