package registry

import (
	"sync"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

// state abstracts the persistence surface Engine needs, grounded on the
// teacher's engineState interface in native/lending/engine.go (a narrow
// Get/Put contract per entity rather than a generic KV string store).
type state interface {
	GetProfile(addr types.Address) (*UserProfile, bool, error)
	PutProfile(addr types.Address, profile *UserProfile) error
	AppendRegistrationIndex(addr types.Address) error
	RegisteredAtIndex(idx uint64) (types.Address, bool, error)
	TotalRegistered() (uint64, error)
}

// MemoryState is the in-process reference implementation of state, used by
// the CLI demo and by every unit test in this package.
type MemoryState struct {
	mu       sync.RWMutex
	profiles map[types.Address]*UserProfile
	order    []types.Address
}

// NewMemoryState constructs an empty MemoryState.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		profiles: make(map[types.Address]*UserProfile),
	}
}

func (s *MemoryState) GetProfile(addr types.Address) (*UserProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[addr]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

func (s *MemoryState) PutProfile(addr types.Address, profile *UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[addr] = profile.Clone()
	return nil
}

func (s *MemoryState) AppendRegistrationIndex(addr types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, addr)
	return nil
}

func (s *MemoryState) RegisteredAtIndex(idx uint64) (types.Address, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx >= uint64(len(s.order)) {
		return types.Address{}, false, nil
	}
	return s.order[idx], true, nil
}

func (s *MemoryState) TotalRegistered() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.order)), nil
}
