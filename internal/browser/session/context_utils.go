// internal/browser/session/context_utils.go
package session

import (
	"context"
	"errors"
)

// CombineContext derives a context from primary (which carries the CDP
// target, so chromedp actions can find the browser) that also ends when
// operational ends. The operational deadline is copied so that timeouts
// surface as context.DeadlineExceeded rather than a bare cancellation.
func CombineContext(primary, operational context.Context) (context.Context, context.CancelFunc) {
	var (
		combined context.Context
		cancel   context.CancelFunc
	)
	if deadline, ok := operational.Deadline(); ok {
		combined, cancel = context.WithDeadline(primary, deadline)
	} else {
		combined, cancel = context.WithCancel(primary)
	}

	if operational.Done() == nil {
		return combined, cancel
	}

	go func() {
		select {
		case <-operational.Done():
			// An expired deadline is already mirrored on combined.
			if !errors.Is(operational.Err(), context.DeadlineExceeded) {
				cancel()
			}
		case <-combined.Done():
		}
	}()

	return combined, cancel
}
