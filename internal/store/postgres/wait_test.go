package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitForPostgresGivesUpAfterExhaustingAttempts(t *testing.T) {
	start := time.Now()
	err := WaitForPostgres("host=127.0.0.1 port=1 user=postgres dbname=nope sslmode=disable", 2, 10*time.Millisecond)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
