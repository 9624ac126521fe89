package reputation

import (
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
	"github.com/GabinFay/uncle-credit-p2p-lending/storage/kv"
)

const snapshotKey = "reputation/v1/state"

type snapshotData struct {
	Profiles      map[types.Address]*ReputationProfile
	Vouches       map[pairKey]*Vouch
	VoucherIndex  map[types.Address][]types.Address
	BorrowerIndex map[types.Address][]types.Address
}

// Snapshot persists every profile and vouch relationship to store.
func (s *MemoryState) Snapshot(store kv.Store) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := snapshotData{
		Profiles:      make(map[types.Address]*ReputationProfile, len(s.profiles)),
		Vouches:       make(map[pairKey]*Vouch, len(s.vouches)),
		VoucherIndex:  make(map[types.Address][]types.Address, len(s.voucherIndex)),
		BorrowerIndex: make(map[types.Address][]types.Address, len(s.borrowerIndex)),
	}
	for addr, p := range s.profiles {
		data.Profiles[addr] = p
	}
	for key, v := range s.vouches {
		data.Vouches[key] = v
	}
	for addr, list := range s.voucherIndex {
		data.VoucherIndex[addr] = append([]types.Address(nil), list...)
	}
	for addr, list := range s.borrowerIndex {
		data.BorrowerIndex[addr] = append([]types.Address(nil), list...)
	}
	return store.Put([]byte(snapshotKey), data)
}

// Restore loads a previously Snapshot-ed state from store.
func (s *MemoryState) Restore(store kv.Store) (bool, error) {
	var data snapshotData
	ok, err := store.Get([]byte(snapshotKey), &data)
	if err != nil || !ok {
		return ok, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = data.Profiles
	s.vouches = data.Vouches
	s.voucherIndex = data.VoucherIndex
	s.borrowerIndex = data.BorrowerIndex
	if s.profiles == nil {
		s.profiles = make(map[types.Address]*ReputationProfile)
	}
	if s.vouches == nil {
		s.vouches = make(map[pairKey]*Vouch)
	}
	if s.voucherIndex == nil {
		s.voucherIndex = make(map[types.Address][]types.Address)
	}
	if s.borrowerIndex == nil {
		s.borrowerIndex = make(map[types.Address][]types.Address)
	}
	return true, nil
}
