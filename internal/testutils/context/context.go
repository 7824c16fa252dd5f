package context

import (
	"context"
	"testing"
	"time"
)

// WithTest returns a context which ends a second before the deadline of t,
// or after timeout when t has no deadline.
//
// It is canceled on cleanup of t.
func WithTest(t *testing.T, timeout time.Duration) context.Context {
	deadline, ok := t.Deadline()
	if ok {
		deadline = deadline.Add(-time.Second)
	} else {
		deadline = time.Now().Add(timeout)
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	t.Cleanup(cancel)
	return ctx
}
