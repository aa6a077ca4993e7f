// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
)

// Limiter counts hits per key in fixed windows. Safe for concurrent use.
// Expired windows are swept lazily once the map grows past sweepAt.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	sweepAt int
	now     func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New allows limit hits per key every period.
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		sweepAt: 1024,
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.windows) >= l.sweepAt {
		l.sweep(now)
	}
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if n := l.limit - w.count; n > 0 {
		return n
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
}

func (l *Limiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}

// ClientIP returns the host part of r.RemoteAddr. The router runs chi's
// RealIP middleware first, so proxy headers are already applied.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles sign-in attempts per client address and per account.
type LoginLimiter struct {
	byIP       *Limiter
	byUsername *Limiter
}

// NewLoginLimiter allows 10 attempts per address per minute and
// 5 attempts per username every 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

func NewLoginLimiterWithConfig(ipLimit int, ipPeriod time.Duration, userLimit int, userPeriod time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP:       New(ipLimit, ipPeriod),
		byUsername: New(userLimit, userPeriod),
	}
}

// Check records an attempt. When it is refused, reason is the message to show.
func (ll *LoginLimiter) Check(r *http.Request, username string) (ok bool, reason string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "too many sign-in attempts; wait a minute and try again"
	}
	if key := text.Fold(username); key != "" && !ll.byUsername.Allow(key) {
		return false, "too many sign-in attempts for this account; wait a few minutes"
	}
	return true, ""
}

// Succeeded clears the per-account counter after a good sign-in.
func (ll *LoginLimiter) Succeeded(username string) {
	if key := text.Fold(username); key != "" {
		ll.byUsername.Reset(key)
	}
}
