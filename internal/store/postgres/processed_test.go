package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/eventflow-io/eventflow/internal/eventerrors"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/model"
)

func TestExistsProcessedAndInsertProcessed(t *testing.T) {
	require.NoError(t, WithTestPool(nil, func(pool *pgxpool.Pool) error {
		store := NewStore(pool)
		ctx := flowcontext.Background()

		exists, err := store.ExistsProcessed(ctx, "fp-processed-1")
		require.NoError(t, err)
		require.False(t, exists)

		rec := model.ProcessedRecord{
			Fingerprint: "fp-processed-1",
			Kind:        model.KindPageView,
			Properties:  map[string]interface{}{},
			ProcessedAt: time.Now().UTC(),
			Status:      model.StatusCompleted,
		}
		require.NoError(t, store.InsertProcessed(ctx, rec))

		exists, err = store.ExistsProcessed(ctx, rec.Fingerprint)
		require.NoError(t, err)
		require.True(t, exists)
		return nil
	}))
}

func TestInsertProcessedReturnsRaceLostOnDuplicate(t *testing.T) {
	require.NoError(t, WithTestPool(nil, func(pool *pgxpool.Pool) error {
		store := NewStore(pool)
		ctx := flowcontext.Background()

		rec := model.ProcessedRecord{
			Fingerprint: "fp-processed-dup",
			Kind:        model.KindPageView,
			Properties:  map[string]interface{}{},
			ProcessedAt: time.Now().UTC(),
			Status:      model.StatusCompleted,
		}
		require.NoError(t, store.InsertProcessed(ctx, rec))

		err := store.InsertProcessed(ctx, rec)
		require.Error(t, err)
		var raceLost *eventerrors.RaceLost
		require.ErrorAs(t, err, &raceLost)
		return nil
	}))
}
