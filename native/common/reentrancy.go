package common

import (
	"sync"

	coreerrors "github.com/GabinFay/uncle-credit-p2p-lending/core/errors"
)

// ErrReentrancy is returned when a guarded call is entered while the same
// guard is already held (§5: "guard every externally-reachable mutating op
// with a re-entrancy lock scoped to the whole call"). It is the shared
// core/errors sentinel, so errors.Is matches either name.
var ErrReentrancy = coreerrors.ErrReentrancy

// ReentrancyGuard is a non-reentrant latch scoped to a single engine
// instance. The execution model (§5) is single-threaded and
// transaction-serialized, so this is not a concurrency primitive in the
// usual sense: its only job is to reject a nested call that a misbehaving
// token callback could otherwise trigger mid-transaction. No pack example
// ships an equivalent primitive (the teacher's native/common only has
// pause-gating and quotas), so this is grounded on the stdlib sync.Mutex
// rather than a third-party library — see DESIGN.md.
type ReentrancyGuard struct {
	mu     sync.Mutex
	locked bool
}

// Enter acquires the guard, returning ErrReentrancy if it is already held.
// On success it returns a release function that MUST be deferred by the
// caller to unlock, e.g.:
//
//	release, err := g.Enter()
//	if err != nil { return err }
//	defer release()
func (g *ReentrancyGuard) Enter() (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked {
		return nil, ErrReentrancy
	}
	g.locked = true
	return g.release, nil
}

func (g *ReentrancyGuard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locked = false
}
