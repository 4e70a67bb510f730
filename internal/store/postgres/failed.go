package postgres

import (
	"encoding/json"

	"github.com/eventflow-io/eventflow/internal/eventerrors"
	"github.com/eventflow-io/eventflow/internal/flowcontext"
	"github.com/eventflow-io/eventflow/internal/model"
)

// InsertFailed is a pure append; fingerprint is not unique on this table
// (spec.md §3 — repeat attempts may each leave a DLQ row).
func (s *Store) InsertFailed(ctx *flowcontext.Context, rec model.FailedRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return &eventerrors.UnknownError{Cause: err}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO failed_events (fingerprint, payload, error_message, failed_at, retry_count)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.Fingerprint, payload, rec.ErrorMessage, rec.FailedAt, rec.RetryCount)
	if err != nil {
		if eventerrors.IsRetryablePostgresError(err) {
			return &eventerrors.TransientStoreError{Cause: err}
		}
		return &eventerrors.UnknownError{Cause: err}
	}
	return nil
}
