package registry

import (
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
	"github.com/GabinFay/uncle-credit-p2p-lending/storage/kv"
)

const snapshotKey = "registry/v1/state"

type snapshotData struct {
	Profiles map[types.Address]*UserProfile
	Order    []types.Address
}

// Snapshot persists the full in-memory registry state to store, used by the
// CLI on graceful shutdown so a restart can resume without re-registering
// every user.
func (s *MemoryState) Snapshot(store kv.Store) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := snapshotData{
		Profiles: make(map[types.Address]*UserProfile, len(s.profiles)),
		Order:    append([]types.Address(nil), s.order...),
	}
	for addr, profile := range s.profiles {
		data.Profiles[addr] = profile
	}
	return store.Put([]byte(snapshotKey), data)
}

// Restore loads a previously Snapshot-ed state from store, reporting
// ok=false when no snapshot exists yet.
func (s *MemoryState) Restore(store kv.Store) (bool, error) {
	var data snapshotData
	ok, err := store.Get([]byte(snapshotKey), &data)
	if err != nil || !ok {
		return ok, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = data.Profiles
	if s.profiles == nil {
		s.profiles = make(map[types.Address]*UserProfile)
	}
	s.order = data.Order
	return true, nil
}
