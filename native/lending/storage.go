package lending

import "sync"

// state abstracts the persistence surface Engine needs, grounded on the
// teacher's engineState interface shape (native/lending/engine.go): a
// narrow Get/Put contract per entity.
type state interface {
	GetOffer(id [32]byte) (*LoanOffer, bool, error)
	PutOffer(id [32]byte, offer *LoanOffer) error

	GetRequest(id [32]byte) (*LoanRequest, bool, error)
	PutRequest(id [32]byte, request *LoanRequest) error

	GetAgreement(id [32]byte) (*LoanAgreement, bool, error)
	PutAgreement(id [32]byte, agreement *LoanAgreement) error

	AppendLenderAgreement(lender Address, id [32]byte) error
	AppendBorrowerAgreement(borrower Address, id [32]byte) error
	LenderAgreements(lender Address) ([][32]byte, error)
	BorrowerAgreements(borrower Address) ([][32]byte, error)
}

// MemoryState is the in-process reference implementation of state.
type MemoryState struct {
	mu         sync.RWMutex
	offers     map[[32]byte]*LoanOffer
	requests   map[[32]byte]*LoanRequest
	agreements map[[32]byte]*LoanAgreement

	byLender   map[Address][][32]byte
	byBorrower map[Address][][32]byte
}

// NewMemoryState constructs an empty MemoryState.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		offers:     make(map[[32]byte]*LoanOffer),
		requests:   make(map[[32]byte]*LoanRequest),
		agreements: make(map[[32]byte]*LoanAgreement),
		byLender:   make(map[Address][][32]byte),
		byBorrower: make(map[Address][][32]byte),
	}
}

func (s *MemoryState) GetOffer(id [32]byte) (*LoanOffer, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, false, nil
	}
	return o.Clone(), true, nil
}

func (s *MemoryState) PutOffer(id [32]byte, offer *LoanOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers[id] = offer.Clone()
	return nil
}

func (s *MemoryState) GetRequest(id [32]byte) (*LoanRequest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, false, nil
	}
	return r.Clone(), true, nil
}

func (s *MemoryState) PutRequest(id [32]byte, request *LoanRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[id] = request.Clone()
	return nil
}

func (s *MemoryState) GetAgreement(id [32]byte) (*LoanAgreement, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agreements[id]
	if !ok {
		return nil, false, nil
	}
	return a.Clone(), true, nil
}

func (s *MemoryState) PutAgreement(id [32]byte, agreement *LoanAgreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agreements[id] = agreement.Clone()
	return nil
}

func (s *MemoryState) AppendLenderAgreement(lender Address, id [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byLender[lender] = append(s.byLender[lender], id)
	return nil
}

func (s *MemoryState) AppendBorrowerAgreement(borrower Address, id [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byBorrower[borrower] = append(s.byBorrower[borrower], id)
	return nil
}

func (s *MemoryState) LenderAgreements(lender Address) ([][32]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][32]byte, len(s.byLender[lender]))
	copy(out, s.byLender[lender])
	return out, nil
}

func (s *MemoryState) BorrowerAgreements(borrower Address) ([][32]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][32]byte, len(s.byBorrower[borrower]))
	copy(out, s.byBorrower[borrower])
	return out, nil
}
