package worker

import (
	"context"
	"fmt"

	"github.com/eventflow-io/eventflow/internal/config"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/metrics"
	"github.com/eventflow-io/eventflow/internal/queue"
	"github.com/eventflow-io/eventflow/internal/store/postgres"
)

const defaultMaxBatch = 10

// Pool launches N worker goroutines sharing one consumer group, following
// the teacher's errgroup-supervised worker shape (flowcontext.ErrGroup).
type Pool struct {
	queue *queue.Queue
	store *postgres.Store
	cfg   config.WorkerConfiguration
}

func NewPool(q *queue.Queue, store *postgres.Store, cfg config.WorkerConfiguration) *Pool {
	return &Pool{queue: q, store: store, cfg: cfg}
}

// Run ensures the consumer group exists, then starts cfg.WorkerCount
// receive-process-ack loops and blocks until ctx is cancelled and every loop
// has returned. A loop stops taking new entries once ctx is cancelled and
// carries the entries it already holds through to a terminal state; the wait
// is not bounded here (cmd/worker applies the shutdown grace period).
func (p *Pool) Run(ctx *flowcontext.Context) error {
	if err := p.queue.EnsureGroup(ctx); err != nil {
		return err
	}

	workerCount := p.cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 3
	}

	group, groupCtx := flowcontext.ErrGroup(ctx)
	for i := 0; i < workerCount; i++ {
		workerID := fmt.Sprintf("%s-%d", p.cfg.WorkerIdPrefix, i+1)
		group.Go(func() error {
			p.runWorker(groupCtx, workerID)
			return nil
		})
	}
	metrics.ActiveWorkers.Set(float64(workerCount))
	defer metrics.ActiveWorkers.Set(0)

	return group.Wait()
}

func (p *Pool) runWorker(ctx *flowcontext.Context, workerID string) {
	log := flowcontext.WithLogField(ctx, "worker_id", workerID)
	// Entries are processed under a context that shutdown does not cancel, so
	// an entry already received still reaches its store writes and ack.
	procCtx := flowcontext.New(context.Background(), log.Log)
	processor := NewProcessor(p.store, p.queue, workerID, p.cfg.Retry, p.cfg.HighValueThreshold)
	idleThreshold := p.cfg.Queue.IdleReclaimThreshold()
	blockTimeout := p.cfg.Queue.BlockTimeout()

	log.Log.Info("worker starting")
	for {
		select {
		case <-ctx.Done():
			log.Log.Info("worker stopping: shutdown signal observed")
			return
		default:
		}

		reclaimed, err := p.queue.ReclaimStale(ctx, workerID, idleThreshold)
		if err != nil {
			log.Log.WithError(err).Warn("reclaim-stale failed, continuing")
		}
		for _, entry := range reclaimed {
			processor.Process(procCtx, entry)
		}

		entries, err := p.queue.Consume(ctx, workerID, defaultMaxBatch, blockTimeout)
		if err != nil {
			log.Log.WithError(err).Warn("consume failed, continuing")
			continue
		}
		for _, entry := range entries {
			processor.Process(procCtx, entry)
		}
	}
}
