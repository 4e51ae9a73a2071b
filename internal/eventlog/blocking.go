package eventlog

import (
	"context"
	"time"
)

// Appended returns a channel closed by the next successful Append.
func (l *Log) Appended() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notifyCh
}

// WaitForAppend blocks until either a new append occurs or timeout elapses.
// It returns true if woken by an append, false on timeout.
func (l *Log) WaitForAppend(timeout time.Duration) bool {
	ch := l.Appended()
	if timeout <= 0 {
		<-ch
		return true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	}
}

// Wait blocks until the next append or until ctx is done.
func (l *Log) Wait(ctx context.Context) error {
	select {
	case <-l.Appended():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
