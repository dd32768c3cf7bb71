package ratelimiter

import (
	"sync"
	"time"
)

// Limiter blocks individual keys for a fixed interval after a failed action.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time
	blocked  map[string]time.Time // key -> blocked until
}

// New creates a new limiter. Blocked keys are released after interval.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
		blocked:  make(map[string]time.Time),
	}
}

// Allow checks if key may act now.
// Returns true if allowed, or false with the remaining wait duration.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.blocked[key]
	if !ok {
		return true, 0
	}
	remaining := until.Sub(l.now())
	if remaining <= 0 {
		delete(l.blocked, key)
		return true, 0
	}
	return false, remaining
}

// Block rejects key for one interval from now
func (l *Limiter) Block(key string) {
	l.mu.Lock()
	l.blocked[key] = l.now().Add(l.interval)
	l.mu.Unlock()
}

// Reset clears the state of key, allowing its next action immediately.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.blocked, key)
	l.mu.Unlock()
}

// Prune drops keys whose block has run out and returns how many were removed
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, until := range l.blocked {
		if !until.After(now) {
			delete(l.blocked, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.blocked)
}

// Interval returns the configured block interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
