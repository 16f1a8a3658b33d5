package analyses

import (
	"sync"
	"time"
)

const pollLimitWindow = 1 * time.Second

// pollLimiter throttles clients polling one analysis in a tight loop.
type pollLimiter struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	now     func() time.Time
	window  time.Duration
}

func newPollLimiter(window time.Duration, now func() time.Time) *pollLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = pollLimitWindow
	}
	return &pollLimiter{
		lastHit: make(map[string]time.Time),
		now:     now,
		window:  window,
	}
}

func (l *pollLimiter) Allow(ownerID, analysisID string) bool {
	if l == nil {
		return true
	}
	key := ownerID + "|" + analysisID
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastHit[key]; ok && now.Sub(last) < l.window {
		return false
	}
	l.lastHit[key] = now
	// prune stale keys
	if len(l.lastHit) > 4096 {
		for k, t := range l.lastHit {
			if now.Sub(t) >= l.window {
				delete(l.lastHit, k)
			}
		}
	}
	return true
}

func (l *pollLimiter) RetryAfterSeconds() int {
	if l == nil {
		return int(pollLimitWindow.Seconds())
	}
	secs := int(l.window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
