// Package ratelimiter keeps one token bucket per identity (user id, client ip).
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter manages rate limiting for multiple identities.
// Buckets idle for longer than expiration are dropped.
type UserRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*entry
	limit      rate.Limit
	burst      int
	expiration time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

func New(rps float64, burst int, expiration time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:   make(map[string]*entry),
		limit:      rate.Limit(rps),
		burst:      burst,
		expiration: expiration,
		now:        time.Now,
	}
}

func (u *UserRateLimiter) Allow(identity string) bool {
	now := u.now()

	u.mu.Lock()
	defer u.mu.Unlock()

	if now.Sub(u.lastSweep) > u.expiration {
		u.sweep(now)
	}

	e, ok := u.limiters[identity]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(u.limit, u.burst)}
		u.limiters[identity] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// must be called with mu held
func (u *UserRateLimiter) sweep(now time.Time) {
	for id, e := range u.limiters {
		if now.Sub(e.lastSeen) > u.expiration {
			delete(u.limiters, id)
		}
	}
	u.lastSweep = now
}

// Len returns the number of tracked identities.
func (u *UserRateLimiter) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.limiters)
}
