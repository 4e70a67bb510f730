// Package worker implements the per-entry processing state machine
// (spec.md §4.3) and the pool of goroutines that run it against a shared
// consumer group.
package worker

import (
	"errors"
	"time"

	"github.com/avast/retry-go"

	"github.com/eventflow-io/eventflow/internal/common/util"
	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/metrics"
	"github.com/eventflow-io/eventflow/internal/model"
	"github.com/eventflow-io/eventflow/internal/queue"
	"github.com/eventflow-io/eventflow/internal/store/postgres"
)

// Processor runs RECEIVED -> DUPLICATE/VALIDATE -> REJECTED/ENRICH ->
// PERSIST(retry) -> PROCESSED/DEAD_LETTER -> ACK for one queue entry.
type Processor struct {
	store              *postgres.Store
	queue              *queue.Queue
	workerID           string
	retry              config.RetryConfig
	highValueThreshold float64
	clock              util.Clock
}

func NewProcessor(store *postgres.Store, q *queue.Queue, workerID string, retryCfg config.RetryConfig, highValueThreshold float64) *Processor {
	return &Processor{store: store, queue: q, workerID: workerID, retry: retryCfg, highValueThreshold: highValueThreshold, clock: &util.DefaultClock{}}
}

// Process runs one entry to a terminal outcome and acks it. If the dedup
// lookup or the dead-letter write fails, the entry is left unacked so that
// reclaim-stale redelivers it. An ack failure is logged, not retried
// in-process: redelivery re-observes a ProcessedRecord as a duplicate, or,
// after a dead-letter, appends a further FailedRecord (spec.md §4.3 ACK / §7).
func (p *Processor) Process(ctx *flowcontext.Context, entry model.QueueEntry) {
	start := time.Now()
	sub := entry.Payload
	ctx = flowcontext.WithCorrelationID(ctx, sub.Fingerprint)
	ctx = flowcontext.WithLogField(ctx, "worker_id", p.workerID)
	if sub.Kind != "" {
		ctx = flowcontext.WithLogField(ctx, "kind", string(sub.Kind))
	}
	defer func() { metrics.EventProcessingDuration.Observe(time.Since(start).Seconds()) }()

	exists, err := p.store.ExistsProcessed(ctx, sub.Fingerprint)
	if err != nil {
		ctx.Log.WithError(err).Warn("dedup lookup failed; leaving entry unacked for redelivery")
		return
	}
	if exists {
		ctx.Log.Info("duplicate delivery observed, skipping processing")
		metrics.EventsDuplicateTotal.Inc()
		p.ack(ctx, entry.EntryID)
		return
	}

	if err := validateSemantics(sub); err != nil {
		ctx.Log.WithError(err).Info("event rejected by validation")
		if !p.deadLetter(ctx, entry, err.Error(), 0) {
			return
		}
		metrics.EventsFailedTotal.WithLabelValues(metrics.ReasonValidation).Inc()
		p.ack(ctx, entry.EntryID)
		return
	}

	enrichment := enrich(sub, p.workerID, p.highValueThreshold)

	record := model.ProcessedRecord{
		Fingerprint: sub.Fingerprint,
		Kind:        sub.Kind,
		SubjectID:   sub.SubjectID,
		OccurredAt:  sub.OccurredAt,
		Properties:  sub.Properties,
		ProcessedAt: p.clock.Now().UTC(),
		Status:      model.StatusCompleted,
		Enrichment:  enrichment,
	}

	attempts, persistErr := p.persist(ctx, &record)
	if persistErr == nil {
		ctx.Log.Info("event processed")
		metrics.EventsProcessedTotal.Inc()
		p.ack(ctx, entry.EntryID)
		return
	}

	if isLostRace(persistErr) {
		ctx.Log.Info("lost insert race, treating as duplicate")
		metrics.EventsDuplicateTotal.Inc()
		p.ack(ctx, entry.EntryID)
		return
	}

	ctx.Log.WithError(persistErr).WithField("attempts", attempts).Warn("persist exhausted, dead-lettering")
	if !p.deadLetter(ctx, entry, persistErr.Error(), attempts) {
		return
	}
	metrics.EventsFailedTotal.WithLabelValues(metrics.ReasonPersist).Inc()
	p.ack(ctx, entry.EntryID)
}

// persist attempts InsertProcessed with bounded exponential backoff (by
// default 3 attempts, waiting 2s and then 4s between them; no wait exceeds
// MaxS), aborting early on a lost dedup race
// since retrying that would be pointless. It returns the number of attempts
// made so the caller can record a retry-count snapshot.
func (p *Processor) persist(ctx *flowcontext.Context, record *model.ProcessedRecord) (int, error) {
	attempts := 0
	maxRetries := p.retry.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseS := p.retry.BaseS
	if baseS <= 0 {
		baseS = 2
	}
	maxS := p.retry.MaxS
	if maxS <= 0 {
		maxS = 10
	}

	err := retry.Do(
		func() error {
			if util.CloseToDeadline(ctx, time.Second) {
				return retry.Unrecoverable(errors.New("aborting persist retries, shutdown deadline imminent"))
			}
			attempts++
			record.RetryCount = attempts - 1
			return p.store.InsertProcessed(ctx, *record)
		},
		retry.Attempts(uint(maxRetries)),
		retry.Delay(time.Duration(baseS)*time.Second),
		retry.MaxDelay(time.Duration(maxS)*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryablePersistError),
	)
	return attempts, err
}

// deadLetter appends the FailedRecord and reports whether it was written.
func (p *Processor) deadLetter(ctx *flowcontext.Context, entry model.QueueEntry, reason string, retryCount int) bool {
	failed := model.FailedRecord{
		Fingerprint:  entry.Payload.Fingerprint,
		Payload:      entry.Payload,
		ErrorMessage: reason,
		FailedAt:     p.clock.Now().UTC(),
		RetryCount:   retryCount,
	}
	if err := p.store.InsertFailed(ctx, failed); err != nil {
		ctx.Log.WithError(err).Error("failed to write dead-letter record; leaving entry unacked for redelivery")
		return false
	}
	return true
}

func (p *Processor) ack(ctx *flowcontext.Context, entryID string) {
	if err := p.queue.Ack(ctx, entryID); err != nil {
		ctx.Log.WithError(err).Warn("ack failed; redelivery will observe the terminal record as a duplicate")
	}
}
