package postgres

import (
	"encoding/json"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/eventflow-io/eventflow/internal/eventerrors"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/model"
)

// Store is the persistence layer's handle onto the shared connection pool.
// Workers and the ingestion service each hold one; pgxpool.Pool is safe for
// concurrent use, so no further locking is required (spec.md §5).
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close satisfies io.Closer so callers can shut it down via util.CloseResource.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// InsertRaw writes the audit row exactly once per fingerprint. A unique
// violation means the producer retried with the same fingerprint before
// seeing a response; the caller surfaces that as a client error.
func (s *Store) InsertRaw(ctx *flowcontext.Context, rec model.RawRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return &eventerrors.StructuralError{Field: "payload", Message: err.Error()}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO raw_events (fingerprint, payload, received_at) VALUES ($1, $2, $3)`,
		rec.Fingerprint, payload, rec.ReceivedAt)
	if err != nil {
		if eventerrors.IsUniqueViolation(err) {
			return &eventerrors.RaceLost{Fingerprint: rec.Fingerprint}
		}
		if eventerrors.IsRetryablePostgresError(err) {
			return &eventerrors.TransientStoreError{Cause: err}
		}
		return &eventerrors.UnknownError{Cause: err}
	}
	return nil
}
