package lending

import "github.com/GabinFay/uncle-credit-p2p-lending/storage/kv"

const snapshotKey = "lending/v1/state"

type snapshotData struct {
	Offers     map[[32]byte]*LoanOffer
	Requests   map[[32]byte]*LoanRequest
	Agreements map[[32]byte]*LoanAgreement
	ByLender   map[Address][][32]byte
	ByBorrower map[Address][][32]byte
}

// Snapshot persists every offer, request, and agreement to store.
func (s *MemoryState) Snapshot(store kv.Store) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := snapshotData{
		Offers:     make(map[[32]byte]*LoanOffer, len(s.offers)),
		Requests:   make(map[[32]byte]*LoanRequest, len(s.requests)),
		Agreements: make(map[[32]byte]*LoanAgreement, len(s.agreements)),
		ByLender:   make(map[Address][][32]byte, len(s.byLender)),
		ByBorrower: make(map[Address][][32]byte, len(s.byBorrower)),
	}
	for id, o := range s.offers {
		data.Offers[id] = o
	}
	for id, r := range s.requests {
		data.Requests[id] = r
	}
	for id, a := range s.agreements {
		data.Agreements[id] = a
	}
	for addr, ids := range s.byLender {
		data.ByLender[addr] = append([][32]byte(nil), ids...)
	}
	for addr, ids := range s.byBorrower {
		data.ByBorrower[addr] = append([][32]byte(nil), ids...)
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
	s.offers = data.Offers
	s.requests = data.Requests
	s.agreements = data.Agreements
	s.byLender = data.ByLender
	s.byBorrower = data.ByBorrower
	if s.offers == nil {
		s.offers = make(map[[32]byte]*LoanOffer)
	}
	if s.requests == nil {
		s.requests = make(map[[32]byte]*LoanRequest)
	}
	if s.agreements == nil {
		s.agreements = make(map[[32]byte]*LoanAgreement)
	}
	if s.byLender == nil {
		s.byLender = make(map[Address][][32]byte)
	}
	if s.byBorrower == nil {
		s.byBorrower = make(map[Address][][32]byte)
	}
	return true, nil
}
