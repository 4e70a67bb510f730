package eventerrors

import (
	"errors"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.SyntaxError}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestIsRetryablePostgresError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection exception class", &pgconn.PgError{Code: "08006"}, true},
		{"insufficient resources class", &pgconn.PgError{Code: "53300"}, true},
		{"operator intervention class", &pgconn.PgError{Code: "57014"}, true},
		{"system error class", &pgconn.PgError{Code: "58030"}, true},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, true},
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"unique violation is not retryable", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, false},
		{"network error", errors.New("dial tcp: connection refused"), true},
		{"nil error", nil, false},
		{"unrelated error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryablePostgresError(tt.err))
		})
	}
}

func TestErrorTypesUnwrap(t *testing.T) {
	cause := errors.New("underlying")

	storeErr := &TransientStoreError{Cause: cause}
	assert.ErrorIs(t, storeErr, cause)
	assert.Contains(t, storeErr.Error(), "transient store error")

	queueErr := &TransientQueueError{Op: "publish", Cause: cause}
	assert.ErrorIs(t, queueErr, cause)
	assert.Contains(t, queueErr.Error(), "publish")

	unknownErr := &UnknownError{Cause: cause}
	assert.ErrorIs(t, unknownErr, cause)
}

func TestRaceLostErrorMessage(t *testing.T) {
	err := &RaceLost{Fingerprint: "abc-123"}
	assert.Contains(t, err.Error(), "abc-123")
}
