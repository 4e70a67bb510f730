package flowcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogFieldAddsFieldWithoutMutatingParent(t *testing.T) {
	parent := Background()
	child := WithLogField(parent, "worker_id", "worker-1")

	assert.NotContains(t, parent.Log.Data, "worker_id")
	assert.Equal(t, "worker-1", child.Log.Data["worker_id"])
}

func TestWithCorrelationIDSetsExpectedField(t *testing.T) {
	ctx := WithCorrelationID(Background(), "fp-1")
	assert.Equal(t, "fp-1", ctx.Log.Data["correlation_id"])
}

func TestWithTimeoutRespectsDeadline(t *testing.T) {
	ctx, cancel := WithTimeout(Background(), 10*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected context to be done after timeout")
	}
	assert.Error(t, ctx.Err())
}

func TestErrGroupPropagatesFirstError(t *testing.T) {
	group, ctx := ErrGroup(Background())
	boom := assertError("boom")
	group.Go(func() error { return boom })
	group.Go(func() error {
		<-ctx.Done()
		return nil
	})

	require.Equal(t, boom, group.Wait())
}

func assertError(msg string) error {
	return errString(msg)
}

type errString string

func (e errString) Error() string { return string(e) }
