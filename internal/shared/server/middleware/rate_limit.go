package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/shared/server/respond"
)

// Rate limit groups. Starting an analysis costs a provider call, so it gets
// its own, tighter bucket; everything else shares GroupDefault.
const (
	GroupDefault = "DEFAULT"
	GroupAnalyze = "ANALYZE"
)

const (
	bucketIdleTTL = 10 * time.Minute
	pruneEvery    = 1024
)

// DefaultRule covers ordinary API traffic, polling included.
var DefaultRule = RateLimitRule{Rate: 20, Burst: 40}

// RateLimitRule is a token bucket refilled at Rate tokens per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// AnalyzeRule converts a per-minute budget into a rule for GroupAnalyze.
func AnalyzeRule(perMinute float64, burst int) RateLimitRule {
	return RateLimitRule{Rate: perMinute / 60, Burst: burst}
}

// GroupByRoute puts POSTs to any .../analyze route in GroupAnalyze.
func GroupByRoute(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/analyze") {
		return GroupAnalyze
	}
	return GroupDefault
}

// RateLimitConfig selects a rule per request. Requests whose group has no rule pass through.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter holds one token bucket per principal and group. Buckets idle
// longer than bucketIdleTTL are dropped.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
	calls   int
}

type rateBucket struct {
	tokens float64
	last   time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: now}
}

// RateLimit throttles each principal per group. The principal is the user id,
// or the client IP for unauthenticated routes. Rejections use the standard
// error envelope with a Retry-After header in whole seconds.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = GroupDefault
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		principal := UserIDFromContext(c)
		if principal == "" {
			principal = c.ClientIP()
		}
		allowed, wait := cfg.Limiter.Allow(principal+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}

		wait = max(wait, time.Millisecond)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"group":        group,
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}

// Allow takes one token from key's bucket. When empty it reports how long until a token is available.
// Rules with a non-positive rate or burst never limit.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.calls%pruneEvery == 0 {
		l.pruneLocked(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(rule.Burst), last: now}
		l.buckets[key] = b
	}
	return b.take(now, rule)
}

func (b *rateBucket) take(now time.Time, rule RateLimitRule) (bool, time.Duration) {
	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+elapsed.Seconds()*rule.Rate)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	missing := 1 - b.tokens
	return false, time.Duration(math.Ceil(missing/rule.Rate*1000)) * time.Millisecond
}

// Len reports the number of live buckets.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Prune drops buckets that have been idle for longer than bucketIdleTTL.
func (l *RateLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.now())
}

func (l *RateLimiter) pruneLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) > bucketIdleTTL {
			delete(l.buckets, key)
		}
	}
}
