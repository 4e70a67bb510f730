package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	require.NoError(t, WithTestPool(nil, func(pool *pgxpool.Pool) error {
		ctx := context.Background()

		require.NoError(t, ApplyMigrations(ctx, pool))
		version, err := readVersion(ctx, pool)
		require.NoError(t, err)
		require.Equal(t, 3, version)

		require.NoError(t, ApplyMigrations(ctx, pool))
		version, err = readVersion(ctx, pool)
		require.NoError(t, err)
		require.Equal(t, 3, version)
		return nil
	}))
}
