// Package flowcontext threads a request-scoped logger alongside a standard
// context.Context, so correlation-id/worker-id/kind fields added once at the
// top of a call chain are visible to every log line emitted underneath it.
package flowcontext

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Context is an extension of Go's context which also carries a logger.
type Context struct {
	context.Context
	Log *logrus.Entry
}

// Background creates an empty context with a default logger.
func Background() *Context {
	return &Context{
		Context: context.Background(),
		Log:     logrus.NewEntry(logrus.StandardLogger()),
	}
}

// New wraps an existing context and logger.
func New(ctx context.Context, log *logrus.Entry) *Context {
	return &Context{Context: ctx, Log: log}
}

// WithCancel returns a copy of parent with a new Done channel.
func WithCancel(parent *Context) (*Context, context.CancelFunc) {
	c, cancel := context.WithCancel(parent.Context)
	return &Context{Context: c, Log: parent.Log}, cancel
}

// WithDeadline returns a copy of parent with the deadline adjusted to be no later than d.
func WithDeadline(parent *Context, d time.Time) (*Context, context.CancelFunc) {
	c, cancel := context.WithDeadline(parent.Context, d)
	return &Context{Context: c, Log: parent.Log}, cancel
}

// WithTimeout returns WithDeadline(parent, time.Now().Add(timeout)).
func WithTimeout(parent *Context, timeout time.Duration) (*Context, context.CancelFunc) {
	return WithDeadline(parent, time.Now().Add(timeout))
}

// WithLogField returns a copy of parent with the supplied key-value added to the logger.
func WithLogField(parent *Context, key string, val interface{}) *Context {
	return &Context{Context: parent.Context, Log: parent.Log.WithField(key, val)}
}

// WithLogFields returns a copy of parent with the supplied key-values added to the logger.
func WithLogFields(parent *Context, fields logrus.Fields) *Context {
	return &Context{Context: parent.Context, Log: parent.Log.WithFields(fields)}
}

// ErrGroup returns a new error group and an associated Context derived from ctx.
func ErrGroup(ctx *Context) (*errgroup.Group, *Context) {
	group, goctx := errgroup.WithContext(ctx)
	return group, &Context{Context: goctx, Log: ctx.Log}
}

// WithCorrelationID attaches the mandatory correlation-id log field for a fingerprint.
func WithCorrelationID(parent *Context, fingerprint string) *Context {
	return WithLogField(parent, "correlation_id", fingerprint)
}
