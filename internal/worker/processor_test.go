package worker

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/model"
	"github.com/eventflow-io/eventflow/internal/queue"
	"github.com/eventflow-io/eventflow/internal/store/postgres"
)

func newTestProcessor(t *testing.T, pool *pgxpool.Pool) (*Processor, *queue.Queue, *postgres.Store) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { _ = client.Close() })

	q := queue.New(client, "events", "workers")
	require.NoError(t, q.EnsureGroup(flowcontext.Background()))

	store := postgres.NewStore(pool)
	retryCfg := config.RetryConfig{MaxRetries: 3, BaseS: 0, MaxS: 0}
	return NewProcessor(store, q, "worker-test-1", retryCfg, 100), q, store
}

func publishAndConsume(t *testing.T, q *queue.Queue, sub model.Submission) model.QueueEntry {
	ctx := flowcontext.Background()
	_, err := q.Publish(ctx, sub)
	require.NoError(t, err)
	entries, err := q.Consume(ctx, "worker-test-1", 1, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func TestProcessPersistsValidEvent(t *testing.T) {
	require.NoError(t, postgres.WithTestPool(nil, func(pool *pgxpool.Pool) error {
		processor, q, store := newTestProcessor(t, pool)
		sub := model.Submission{
			Fingerprint: "fp-proc-1",
			Kind:        model.KindPageView,
			Properties:  map[string]interface{}{},
			OccurredAt:  time.Now().UTC(),
		}
		entry := publishAndConsume(t, q, sub)

		ctx := flowcontext.Background()
		processor.Process(ctx, entry)

		exists, err := store.ExistsProcessed(ctx, sub.Fingerprint)
		require.NoError(t, err)
		require.True(t, exists)

		pending, err := q.PendingCount(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(0), pending)
		return nil
	}))
}

func TestProcessTagsHighValuePurchase(t *testing.T) {
	require.NoError(t, postgres.WithTestPool(nil, func(pool *pgxpool.Pool) error {
		processor, q, _ := newTestProcessor(t, pool)
		sub := model.Submission{
			Fingerprint: "fp-proc-highvalue",
			Kind:        model.KindPurchase,
			Properties:  map[string]interface{}{"amount": 500.0},
			OccurredAt:  time.Now().UTC(),
		}
		entry := publishAndConsume(t, q, sub)

		ctx := flowcontext.Background()
		processor.Process(ctx, entry)

		var tag string
		row := pool.QueryRow(ctx, `SELECT enrichment->>'tag' FROM processed_events WHERE fingerprint = $1`, sub.Fingerprint)
		require.NoError(t, row.Scan(&tag))
		require.Equal(t, tagHighValue, tag)
		return nil
	}))
}

func TestProcessDeadLettersInvalidPurchase(t *testing.T) {
	require.NoError(t, postgres.WithTestPool(nil, func(pool *pgxpool.Pool) error {
		processor, q, store := newTestProcessor(t, pool)
		sub := model.Submission{
			Fingerprint: "fp-proc-invalid",
			Kind:        model.KindPurchase,
			Properties:  map[string]interface{}{},
			OccurredAt:  time.Now().UTC(),
		}
		entry := publishAndConsume(t, q, sub)

		ctx := flowcontext.Background()
		processor.Process(ctx, entry)

		exists, err := store.ExistsProcessed(ctx, sub.Fingerprint)
		require.NoError(t, err)
		require.False(t, exists)

		var count int
		row := pool.QueryRow(ctx, `SELECT count(*) FROM failed_events WHERE fingerprint = $1`, sub.Fingerprint)
		require.NoError(t, row.Scan(&count))
		require.Equal(t, 1, count)
		return nil
	}))
}

func TestProcessSkipsAlreadyProcessedDuplicate(t *testing.T) {
	require.NoError(t, postgres.WithTestPool(nil, func(pool *pgxpool.Pool) error {
		processor, q, store := newTestProcessor(t, pool)
		sub := model.Submission{
			Fingerprint: "fp-proc-dup",
			Kind:        model.KindPageView,
			Properties:  map[string]interface{}{},
			OccurredAt:  time.Now().UTC(),
		}
		ctx := flowcontext.Background()

		first := publishAndConsume(t, q, sub)
		processor.Process(ctx, first)

		second := publishAndConsume(t, q, sub)
		processor.Process(ctx, second)

		var count int
		row := pool.QueryRow(ctx, `SELECT count(*) FROM processed_events WHERE fingerprint = $1`, sub.Fingerprint)
		require.NoError(t, row.Scan(&count))
		require.Equal(t, 1, count)

		_ = store
		return nil
	}))
}
