package portaransas

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPLimiter keeps one token bucket per client IP. Idle buckets are pruned
// lazily while handling requests, so no background goroutine is needed.
type IPLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idle    time.Duration
	swept   time.Time
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewIPLimiter allows max events per window for each IP, with bursts up to max.
func NewIPLimiter(max int, window time.Duration) *IPLimiter {
	return &IPLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(max) / window.Seconds()),
		burst:   max,
		idle:    window,
		now:     time.Now,
	}
}

func (l *IPLimiter) get(ip string) *rate.Limiter {
	now := l.now()
	if now.Sub(l.swept) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim
}

// Allow consumes one token for ip and reports whether it was available.
func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.get(ip).AllowN(l.now(), 1)
}

// Check reports whether ip has a token left without consuming it.
// Pair with Record for flows that only count failures, such as login.
func (l *IPLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.get(ip).TokensAt(l.now()) >= 1
}

// Record consumes a token for ip.
func (l *IPLimiter) Record(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.get(ip).AllowN(l.now(), 1)
}

// Len returns the number of tracked IPs.
func (l *IPLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
