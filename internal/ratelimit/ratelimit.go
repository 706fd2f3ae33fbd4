// Package ratelimit provides sliding-window admission control keyed by
// logical operation name.
//
// The budget is global per operation, not per caller: every client of the
// same tool shares one window. State lives only in memory and is pruned
// on each admission check, never on a timer.
package ratelimit

import (
	"sync"
	"time"
)

// Window and MaxCalls define the fixed admission budget:
// at most MaxCalls admitted per operation within any trailing Window.
const (
	Window   = 60 * time.Second
	MaxCalls = 10
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Limiter is the admission check seen by the orchestrator.
// Implementations must be safe for concurrent use.
type Limiter interface {
	// Admit records and allows the call when the operation is under budget,
	// and rejects it without recording otherwise.
	Admit(operation string) bool
}

// SlidingWindow implements Limiter with one timestamp list per operation.
type SlidingWindow struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	windows map[string][]time.Time
}

// New creates a SlidingWindow with the standard Window and MaxCalls.
func New() *SlidingWindow {
	return &SlidingWindow{
		window:  Window,
		max:     MaxCalls,
		windows: make(map[string][]time.Time),
	}
}

// Admit implements Limiter. Timestamps older than the window are pruned
// first, so admission resets Window after the earliest recorded call.
func (l *SlidingWindow) Admit(operation string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := timeNow()
	kept := l.windows[operation][:0]
	for _, ts := range l.windows[operation] {
		if now.Sub(ts) < l.window {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.max {
		l.windows[operation] = kept
		return false
	}

	l.windows[operation] = append(kept, now)
	return true
}
