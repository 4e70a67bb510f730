package util

import (
	"github.com/eventflow-io/eventflow/internal/flowcontext"
)

// RetryUntilSuccess calls performAction until it succeeds or ctx is done,
// invoking onError (expected to back off) between attempts.
func RetryUntilSuccess(ctx *flowcontext.Context, performAction func() error, onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := performAction(); err == nil {
				return
			} else {
				onError(err)
			}
		}
	}
}
