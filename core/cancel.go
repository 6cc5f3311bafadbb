package core

import "sync/atomic"

// CancelToken is a cooperative cancellation flag for long-running multi-page
// operations (auto-scan, OCR passes). The running loop checks the token
// between pages and stops after completing its current page; results
// collected up to that point are committed, not discarded.
//
// A token is handed to the operation at start so the routine is testable in
// isolation, instead of the operation reading an ambient stop flag. Tokens
// are single-use: once cancelled they stay cancelled.
//
// CancelToken is safe for concurrent use.
type CancelToken struct {
	cancelled atomic.Bool
}

// NewCancelToken returns a fresh, uncancelled token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel requests the operation stop at its next check point.
// Safe to call multiple times and from any goroutine.
func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether cancellation has been requested.
// A nil token is never cancelled, so optional tokens need no guard.
func (t *CancelToken) Cancelled() bool {
	if t == nil {
		return false
	}
	return t.cancelled.Load()
}
