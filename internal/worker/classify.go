package worker

import (
	"errors"

	"github.com/eventflow-io/eventflow/internal/eventerrors"
)

// Failure classification rules (spec.md §4.3):
//   - structural/semantic violations are PERMANENT -> immediate DLQ, no retry
//   - store/network errors during persist are TRANSIENT -> retried with backoff
//   - a lost dedup race is not a failure at all -> treated as DUPLICATE
//
// Enrichment in this implementation is pure and cannot itself fail (spec.md
// §4.3 ENRICH: "MUST NOT perform network I/O... any enrichment that could
// fail is treated as PERSIST failure"), so there is no separate enrich-error
// branch here; an enrichment bug surfaces as a PERSIST-path error instead.

// isRetryablePersistError reports whether a PERSIST failure should consume
// another retry attempt rather than ending the attempt loop immediately.
func isRetryablePersistError(err error) bool {
	var raceLost *eventerrors.RaceLost
	if errors.As(err, &raceLost) {
		return false
	}
	return true
}

// isLostRace reports whether err represents another worker having already
// committed the ProcessedRecord for this fingerprint.
func isLostRace(err error) bool {
	var raceLost *eventerrors.RaceLost
	return errors.As(err, &raceLost)
}
