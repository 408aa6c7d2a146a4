package runtime

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter enforces a fixed per-user message quota. The first event for a
// user opens a window; events increment the count until the window expires,
// at which point the next event opens a fresh one. At the cap, attempts are
// denied without incrementing. Windows are forgotten on disconnect.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	max      int
	interval time.Duration
	clock    func() time.Time
}

func NewRateLimiter(max int, interval time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(max, interval, time.Now)
}

// NewRateLimiterWithClock injects the time source, for tests.
func NewRateLimiterWithClock(max int, interval time.Duration, clock func() time.Time) *RateLimiter {
	return &RateLimiter{
		windows:  make(map[string]*window),
		max:      max,
		interval: interval,
		clock:    clock,
	}
}

// CheckAndConsume reports whether the user may emit one more event, and
// consumes quota when allowed.
func (l *RateLimiter) CheckAndConsume(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	w, ok := l.windows[userID]
	if !ok || now.After(w.resetAt) {
		l.windows[userID] = &window{count: 1, resetAt: now.Add(l.interval)}
		return true
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	return true
}

// Forget drops the user's window, part of disconnect cleanup.
func (l *RateLimiter) Forget(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, userID)
}

// Len returns the number of live windows.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
