package ingestion

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/queue"
	"github.com/eventflow-io/eventflow/internal/store/postgres"
)

func newTestIngestion(t *testing.T, pool *pgxpool.Pool) *Ingestion {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { _ = client.Close() })

	q := queue.New(client, "events", "workers")
	require.NoError(t, q.EnsureGroup(flowcontext.Background()))

	store := postgres.NewStore(pool)
	return New(config.IngestionConfiguration{}, store, q)
}

func TestHandleSubmitAcceptsAndRejectsDuplicate(t *testing.T) {
	require.NoError(t, postgres.WithTestPool(nil, func(pool *pgxpool.Pool) error {
		svc := newTestIngestion(t, pool)

		body := `{"fingerprint":"fp-submit-1","kind":"page_view","properties":{}}`
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		svc.handleSubmit(rec, req)
		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "fp-submit-1", resp["fingerprint"])
		require.Equal(t, "accepted", resp["status"])

		req2 := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
		rec2 := httptest.NewRecorder()
		svc.handleSubmit(rec2, req2)
		require.Equal(t, http.StatusBadRequest, rec2.Code)
		return nil
	}))
}

func TestHandleSubmitRejectsMalformedBody(t *testing.T) {
	require.NoError(t, postgres.WithTestPool(nil, func(pool *pgxpool.Pool) error {
		svc := newTestIngestion(t, pool)

		body := `{"properties":{}}`
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		svc.handleSubmit(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		return nil
	}))
}

func TestHandleSubmitRejectsNonPost(t *testing.T) {
	require.NoError(t, postgres.WithTestPool(nil, func(pool *pgxpool.Pool) error {
		svc := newTestIngestion(t, pool)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		rec := httptest.NewRecorder()
		svc.handleSubmit(rec, req)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		return nil
	}))
}

func TestHandleHealthReportsOkWhenDependenciesAreUp(t *testing.T) {
	require.NoError(t, postgres.WithTestPool(nil, func(pool *pgxpool.Pool) error {
		svc := newTestIngestion(t, pool)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		svc.handleHealth(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "ok", resp["status"])
		return nil
	}))
}

func TestHandleMetricsSummaryReflectsQueueState(t *testing.T) {
	require.NoError(t, postgres.WithTestPool(nil, func(pool *pgxpool.Pool) error {
		svc := newTestIngestion(t, pool)

		body := `{"fingerprint":"fp-metrics-1","kind":"page_view","properties":{}}`
		postReq := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
		postRec := httptest.NewRecorder()
		svc.handleSubmit(postRec, postReq)
		require.Equal(t, http.StatusAccepted, postRec.Code)

		req := httptest.NewRequest(http.MethodGet, "/metrics/summary", nil)
		rec := httptest.NewRecorder()
		svc.handleMetricsSummary(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.EqualValues(t, 1, resp["queue_length"])
		return nil
	}))
}
