package common

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

// AddressRateLimiter throttles the rate at which a single caller address may
// invoke a mutating entrypoint, keyed per address rather than per HTTP
// client as in the teacher's gateway/middleware.RateLimiter. cmd/lendingd
// consults it before the Lending CreateOffer and CreateRequest calls, ahead
// of the reentrancy guard and any state mutation; no other entrypoint is
// rate limited.
type AddressRateLimiter struct {
	perSecond float64
	burst     int

	mu       sync.Mutex
	visitors map[types.Address]*rate.Limiter
	clockNow func() time.Time
}

// NewAddressRateLimiter builds a limiter allowing perSecond sustained calls
// per address with the given burst capacity. A non-positive perSecond or
// burst disables limiting entirely (Allow always returns true).
func NewAddressRateLimiter(perSecond float64, burst int) *AddressRateLimiter {
	return &AddressRateLimiter{
		perSecond: perSecond,
		burst:     burst,
		visitors:  make(map[types.Address]*rate.Limiter),
		clockNow:  time.Now,
	}
}

// Allow reports whether addr may perform one more call right now, consuming
// a token from its bucket if so.
func (r *AddressRateLimiter) Allow(addr types.Address) bool {
	if r.perSecond <= 0 || r.burst <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	limiter, ok := r.visitors[addr]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(r.perSecond), r.burst)
		r.visitors[addr] = limiter
	}
	return limiter.AllowN(r.clockNow(), 1)
}
