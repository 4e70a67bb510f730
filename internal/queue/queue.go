// Package queue wraps Redis Streams consumer groups behind the
// publish/ensure-group/consume/reclaim-stale/ack/pending-count/length
// interface spec.md §4.2 names, generalized from the XADD/XREADGROUP/XACK
// calls in original_source/common/redis_client.py.
package queue

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/eventflow-io/eventflow/internal/eventerrors"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/model"
)

const dataField = "data"

// Queue is a consumer-group handle over a single Redis stream.
type Queue struct {
	client redis.UniversalClient
	stream string
	group  string
}

func New(client redis.UniversalClient, stream, group string) *Queue {
	return &Queue{client: client, stream: stream, group: group}
}

// EnsureGroup creates the consumer group positioned at the current tail if
// it does not already exist. A BUSYGROUP response means another process
// won the race and is not an error.
func (q *Queue) EnsureGroup(ctx *flowcontext.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return &eventerrors.TransientQueueError{Op: "ensure-group", Cause: err}
	}
	return nil
}

// Publish appends payload to the stream and returns its server-assigned id.
func (q *Queue) Publish(ctx *flowcontext.Context, payload model.Submission) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", &eventerrors.StructuralError{Field: "payload", Message: err.Error()}
	}

	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{dataField: raw},
	}).Result()
	if err != nil {
		return "", &eventerrors.TransientQueueError{Op: "publish", Cause: err}
	}
	return id, nil
}

// Consume reads up to maxBatch entries newly delivered to consumerID,
// blocking for at most blockTimeout when the stream has nothing new.
func (q *Queue) Consume(ctx *flowcontext.Context, consumerID string, maxBatch int64, blockTimeout time.Duration) ([]model.QueueEntry, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: consumerID,
		Streams:  []string{q.stream, ">"},
		Count:    maxBatch,
		Block:    blockTimeout,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, &eventerrors.TransientQueueError{Op: "consume", Cause: err}
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return entriesFromMessages(streams[0].Messages)
}

// ReclaimStale reassigns entries idle beyond idleThreshold to consumerID.
// This is the sole recovery mechanism for a worker that crashed between
// receipt and ack (spec.md §4.2 Recovery policy).
func (q *Queue) ReclaimStale(ctx *flowcontext.Context, consumerID string, idleThreshold time.Duration) ([]model.QueueEntry, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.stream,
		Group:  q.group,
		Start:  "-",
		End:    "+",
		Count:  100,
		Idle:   idleThreshold,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, &eventerrors.TransientQueueError{Op: "reclaim-stale", Cause: err}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	ids := make([]string, len(pending))
	for i, p := range pending {
		ids[i] = p.ID
	}

	messages, err := q.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: consumerID,
		MinIdle:  idleThreshold,
		Messages: ids,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, &eventerrors.TransientQueueError{Op: "reclaim-stale", Cause: err}
	}
	return entriesFromMessages(messages)
}

// Ack removes entryID from the group's pending set. Idempotent: acking an
// already-acked id is a no-op as far as the caller is concerned.
func (q *Queue) Ack(ctx *flowcontext.Context, entryID string) error {
	if err := q.client.XAck(ctx, q.stream, q.group, entryID).Err(); err != nil {
		return &eventerrors.TransientQueueError{Op: "ack", Cause: err}
	}
	return nil
}

// PendingCount returns the number of entries delivered but not yet acked.
func (q *Queue) PendingCount(ctx *flowcontext.Context) (int64, error) {
	info, err := q.client.XPending(ctx, q.stream, q.group).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, &eventerrors.TransientQueueError{Op: "pending-count", Cause: err}
	}
	return info.Count, nil
}

// Length returns the stream's current entry count.
func (q *Queue) Length(ctx *flowcontext.Context) (int64, error) {
	length, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil {
		return 0, &eventerrors.TransientQueueError{Op: "length", Cause: err}
	}
	return length, nil
}

func entriesFromMessages(messages []redis.XMessage) ([]model.QueueEntry, error) {
	entries := make([]model.QueueEntry, 0, len(messages))
	for _, m := range messages {
		raw, ok := m.Values[dataField]
		if !ok {
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var payload model.Submission
		if err := json.Unmarshal([]byte(str), &payload); err != nil {
			return nil, &eventerrors.StructuralError{Field: "payload", Message: err.Error()}
		}
		entries = append(entries, model.QueueEntry{EntryID: m.ID, Payload: payload})
	}
	return entries, nil
}
