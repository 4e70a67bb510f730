package postgres

import (
	"encoding/json"

	"github.com/jackc/pgx/v4"

	"github.com/eventflow-io/eventflow/internal/eventerrors"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/model"
)

// ExistsProcessed is the dedup point lookup the RECEIVED state consults
// before running VALIDATE/ENRICH.
func (s *Store) ExistsProcessed(ctx *flowcontext.Context, fingerprint string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM processed_events WHERE fingerprint = $1)`, fingerprint).Scan(&exists)
	if err != nil {
		if eventerrors.IsRetryablePostgresError(err) {
			return false, &eventerrors.TransientStoreError{Cause: err}
		}
		return false, &eventerrors.UnknownError{Cause: err}
	}
	return exists, nil
}

// InsertProcessed commits the terminal success row inside its own
// transaction, following the teacher's pgx.BeginTxFunc pattern so each
// PERSIST retry attempt is a fresh transaction (spec.md §4.3).
func (s *Store) InsertProcessed(ctx *flowcontext.Context, rec model.ProcessedRecord) error {
	properties, err := json.Marshal(rec.Properties)
	if err != nil {
		return &eventerrors.UnknownError{Cause: err}
	}
	enrichment, err := json.Marshal(rec.Enrichment)
	if err != nil {
		return &eventerrors.UnknownError{Cause: err}
	}

	err = s.pool.BeginTxFunc(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO processed_events
			 (fingerprint, kind, subject_id, occurred_at, properties, processed_at, status, enrichment, retry_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			rec.Fingerprint, string(rec.Kind), rec.SubjectID, rec.OccurredAt, properties,
			rec.ProcessedAt, rec.Status, enrichment, rec.RetryCount)
		return err
	})
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
