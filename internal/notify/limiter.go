package notify

import (
	"sync"
	"time"
)

// window is the rolling period a notification budget applies to.
const window = time.Minute

// Limiter caps how many notifications may be sent under each title per
// rolling minute. The registry is shared by every subscription: two
// subscriptions sending under the same title draw from one budget.
type Limiter struct {
	mu    sync.Mutex
	sends map[string][]time.Time
	now   func() time.Time
}

// NewLimiter creates an empty limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		sends: make(map[string][]time.Time),
		now:   time.Now,
	}
}

// Allow reports whether a notification under title fits the given
// per-minute limit, and records the send when it does. A limit of 0
// always denies; callers should skip the suppression warning in that
// case since such subscriptions never intend to send.
func (l *Limiter) Allow(title string, limit int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	kept := l.sends[title][:0]
	for _, ts := range l.sends[title] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.sends[title] = kept

	if len(kept) >= limit {
		return false
	}
	l.sends[title] = append(kept, now)
	return true
}

// WindowCounts returns the current number of in-window sends per title.
func (l *Limiter) WindowCounts() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-window)
	counts := make(map[string]int, len(l.sends))
	for title, timestamps := range l.sends {
		n := 0
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				n++
			}
		}
		if n > 0 {
			counts[title] = n
		}
	}
	return counts
}
