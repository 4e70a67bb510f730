// Package ingestion implements the HTTP front-end: structural validation,
// fingerprint assignment, the raw-event audit write, and the publish to the
// queue, per spec.md §4.1.
package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eventflow-io/eventflow/internal/common/health"
	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/eventerrors"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/metrics"
	"github.com/eventflow-io/eventflow/internal/model"
	"github.com/eventflow-io/eventflow/internal/queue"
	"github.com/eventflow-io/eventflow/internal/store/postgres"
)

const serviceVersion = "0.1.0"

type checkerFunc func() error

func (f checkerFunc) Check() error { return f() }

// Ingestion owns the HTTP surface and the metrics surface on a separate
// port, mirroring the teacher's common.ServeMetrics split.
type Ingestion struct {
	store         *postgres.Store
	queue         *queue.Queue
	cfg           config.IngestionConfiguration
	server        *http.Server
	metricsServer *http.Server
}

func New(cfg config.IngestionConfiguration, store *postgres.Store, q *queue.Queue) *Ingestion {
	return &Ingestion{store: store, queue: q, cfg: cfg}
}

// Start binds and serves the ingestion HTTP surface and the Prometheus
// metrics surface, each on its own listener, without blocking.
func (i *Ingestion) Start(ctx *flowcontext.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", i.handleSubmit)
	mux.HandleFunc("/health", i.handleHealth)
	mux.HandleFunc("/metrics/summary", i.handleMetricsSummary)
	mux.HandleFunc("/", i.handleRoot)

	i.server = &http.Server{Addr: portAddr(i.cfg.HttpPort), Handler: mux}
	go func() {
		if err := i.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ctx.Log.WithError(err).Error("ingestion http server stopped unexpectedly")
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	i.metricsServer = &http.Server{Addr: portAddr(i.cfg.MetricsPort), Handler: metricsMux}
	go func() {
		if err := i.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ctx.Log.WithError(err).Error("metrics http server stopped unexpectedly")
		}
	}()
}

// Stop gracefully shuts down both listeners.
func (i *Ingestion) Stop(ctx context.Context) {
	if i.server != nil {
		_ = i.server.Shutdown(ctx)
	}
	if i.metricsServer != nil {
		_ = i.metricsServer.Shutdown(ctx)
	}
}

func (i *Ingestion) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var sub model.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if sub.Fingerprint == "" {
		sub.Fingerprint = uuid.New().String()
	}
	if sub.CorrelationID == "" {
		sub.CorrelationID = sub.Fingerprint
	}
	if sub.OccurredAt.IsZero() {
		sub.OccurredAt = time.Now().UTC()
	}

	ctx := flowcontext.WithCorrelationID(flowcontext.Background(), sub.Fingerprint)
	ctx = flowcontext.WithLogField(ctx, "kind", string(sub.Kind))

	if err := validateStructural(sub); err != nil {
		ctx.Log.WithError(err).Info("rejected malformed submission")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receivedAt := time.Now().UTC()
	if err := i.store.InsertRaw(ctx, model.RawRecord{
		Fingerprint: sub.Fingerprint,
		Payload:     sub,
		ReceivedAt:  receivedAt,
	}); err != nil {
		var raceLost *eventerrors.RaceLost
		if errors.As(err, &raceLost) {
			writeError(w, http.StatusBadRequest, "fingerprint already submitted")
			return
		}
		ctx.Log.WithError(err).Error("raw insert failed")
		writeError(w, http.StatusInternalServerError, "failed to record event")
		return
	}

	if _, err := i.queue.Publish(ctx, sub); err != nil {
		ctx.Log.WithError(err).Error("publish failed after raw insert succeeded")
		writeError(w, http.StatusInternalServerError, "failed to enqueue event")
		return
	}

	metrics.EventsReceivedTotal.Inc()
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"fingerprint": sub.Fingerprint,
		"status":      "accepted",
		"received_at": receivedAt,
	})
}

func (i *Ingestion) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := flowcontext.Background()

	storeErr := i.checkStore(ctx)
	queueErr := i.checkQueue(ctx)

	checker := health.NewMultiChecker(
		checkerFunc(func() error { return storeErr }),
		checkerFunc(func() error { return queueErr }),
	)

	components := map[string]string{
		"store": componentStatus(storeErr),
		"queue": componentStatus(queueErr),
	}

	status := http.StatusOK
	overall := "ok"
	if err := checker.Check(); err != nil {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
		ctx.Log.WithError(aggregateErr(storeErr, queueErr)).Warn("health check failed")
	}

	writeJSON(w, status, map[string]interface{}{
		"status":     overall,
		"components": components,
		"version":    serviceVersion,
	})
}

func (i *Ingestion) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := flowcontext.Background()

	length, err := i.queue.Length(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pending, err := i.queue.PendingCount(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.QueueDepth.Set(float64(length))
	metrics.PendingMessages.Set(float64(pending))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"queue_length": length,
		"pending":      pending,
	})
}

func (i *Ingestion) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "eventflow-ingestion",
		"version": serviceVersion,
	})
}

func (i *Ingestion) checkStore(ctx *flowcontext.Context) error {
	_, err := i.store.ExistsProcessed(ctx, "healthcheck")
	return err
}

func (i *Ingestion) checkQueue(ctx *flowcontext.Context) error {
	_, err := i.queue.Length(ctx)
	return err
}

// aggregateErr folds the per-component probe errors into a single
// multierror for logging, so the health endpoint's JSON body can stay terse
// while the log line carries the full detail.
func aggregateErr(errs ...error) error {
	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func componentStatus(err error) string {
	if err == nil {
		return "ok"
	}
	return "unavailable"
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func portAddr(port uint16) string {
	return ":" + strconv.Itoa(int(port))
}
