package reputation

import (
	"sync"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

type pairKey [2 * types.AddressLength]byte

func makePairKey(voucher, borrower types.Address) pairKey {
	var k pairKey
	copy(k[:types.AddressLength], voucher[:])
	copy(k[types.AddressLength:], borrower[:])
	return k
}

// state abstracts the persistence surface Engine needs, grounded on the
// teacher's engineState interface shape (native/lending/engine.go): a
// narrow Get/Put contract per entity instead of a generic KV string store.
type state interface {
	GetProfile(addr types.Address) (*ReputationProfile, bool, error)
	PutProfile(addr types.Address, profile *ReputationProfile) error

	GetVouch(voucher, borrower types.Address) (*Vouch, bool, error)
	PutVouch(voucher, borrower types.Address, vouch *Vouch) error

	// VouchesGiven and VouchesReceived enumerate every pair ever created for
	// the address in the given role, active or not (§3.3 "per-voucher /
	// per-borrower history append-only lists").
	VouchesGiven(voucher types.Address) ([]*Vouch, error)
	VouchesReceived(borrower types.Address) ([]*Vouch, error)
}

// MemoryState is the in-process reference implementation of state.
type MemoryState struct {
	mu       sync.RWMutex
	profiles map[types.Address]*ReputationProfile
	vouches  map[pairKey]*Vouch

	// voucherIndex[voucher] / borrowerIndex[borrower] each list every
	// counterparty a pair has ever existed for, appended exactly once the
	// first time the pair is created.
	voucherIndex  map[types.Address][]types.Address
	borrowerIndex map[types.Address][]types.Address
}

// NewMemoryState constructs an empty MemoryState.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		profiles:      make(map[types.Address]*ReputationProfile),
		vouches:       make(map[pairKey]*Vouch),
		voucherIndex:  make(map[types.Address][]types.Address),
		borrowerIndex: make(map[types.Address][]types.Address),
	}
}

func (s *MemoryState) GetProfile(addr types.Address) (*ReputationProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[addr]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

func (s *MemoryState) PutProfile(addr types.Address, profile *ReputationProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[addr] = profile.Clone()
	return nil
}

func (s *MemoryState) GetVouch(voucher, borrower types.Address) (*Vouch, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vouches[makePairKey(voucher, borrower)]
	if !ok {
		return nil, false, nil
	}
	return v.Clone(), true, nil
}

func (s *MemoryState) PutVouch(voucher, borrower types.Address, vouch *Vouch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := makePairKey(voucher, borrower)
	if _, existed := s.vouches[key]; !existed {
		s.voucherIndex[voucher] = append(s.voucherIndex[voucher], borrower)
		s.borrowerIndex[borrower] = append(s.borrowerIndex[borrower], voucher)
	}
	s.vouches[key] = vouch.Clone()
	return nil
}

func (s *MemoryState) VouchesGiven(voucher types.Address) ([]*Vouch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	borrowers := s.voucherIndex[voucher]
	out := make([]*Vouch, 0, len(borrowers))
	for _, borrower := range borrowers {
		if v, ok := s.vouches[makePairKey(voucher, borrower)]; ok {
			out = append(out, v.Clone())
		}
	}
	return out, nil
}

func (s *MemoryState) VouchesReceived(borrower types.Address) ([]*Vouch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vouchers := s.borrowerIndex[borrower]
	out := make([]*Vouch, 0, len(vouchers))
	for _, voucher := range vouchers {
		if v, ok := s.vouches[makePairKey(voucher, borrower)]; ok {
			out = append(out, v.Clone())
		}
	}
	return out, nil
}
