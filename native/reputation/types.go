// Package reputation implements the Reputation module (§4.2): the
// stake-backed vouching ledger and the scored reputation history that
// Lending feeds on every payment outcome, default, and slash. Reputation
// never calls into Lending; it only validates that the outcome, default and
// slash mutators are called by the configured lending authority address
// (§5, §9). AddVouch and RemoveVouch act for their own caller.
package reputation

import (
	"math/big"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

// Address aliases the shared 20-byte account identifier (§3).
type Address = types.Address

// ReputationProfile is the persisted, append-only-in-spirit scorecard for
// one account (§3.2). All uint64 counters only move forward;
// VouchingStakeActive falls when stake is removed or slashed, and
// CurrentScore can move in either direction.
type ReputationProfile struct {
	LoansTaken      uint64
	LoansGiven      uint64

	LoansRepaidOnTime      uint64
	LoansRepaidLateGrace   uint64
	LoansDefaulted         uint64

	TotalValueBorrowed *big.Int
	TotalValueLent      *big.Int

	VouchingStakeActive *big.Int
	TimesVouched        uint64
	TimesDefaultedAsVoucher uint64

	ModificationsApprovedByLender uint64
	ModificationsRejectedByLender uint64

	CurrentScore int64
}

// Clone returns a deep copy of the profile, safe to hand to callers.
func (p *ReputationProfile) Clone() *ReputationProfile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.TotalValueBorrowed = new(big.Int).Set(nz(p.TotalValueBorrowed))
	clone.TotalValueLent = new(big.Int).Set(nz(p.TotalValueLent))
	clone.VouchingStakeActive = new(big.Int).Set(nz(p.VouchingStakeActive))
	return &clone
}

func nz(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

// NewReputationProfile returns a zeroed profile with non-nil big.Int fields.
func NewReputationProfile() *ReputationProfile {
	return &ReputationProfile{
		TotalValueBorrowed:  big.NewInt(0),
		TotalValueLent:      big.NewInt(0),
		VouchingStakeActive: big.NewInt(0),
	}
}

// Vouch is the persisted record of one voucher backing one borrower (§3.3).
// At most one Vouch per (Voucher, Borrower) pair may be Active at a time;
// the map keyed by that pair is the source of truth, while per-address
// history lists are append-only and never mutated after being appended.
type Vouch struct {
	Voucher       Address
	Borrower      Address
	Token         Address
	StakedAmount  *big.Int
	Active        bool
}

// Clone returns a deep copy of the vouch.
func (v *Vouch) Clone() *Vouch {
	if v == nil {
		return nil
	}
	clone := *v
	clone.StakedAmount = new(big.Int).Set(nz(v.StakedAmount))
	return &clone
}

// Named score deltas (§4.2). Exposed as constants rather than hardcoded in
// tests, per spec's explicit requirement.
const (
	RepaidOnTimeOriginal        int64 = 10
	RepaidLateGrace             int64 = 3
	RepaidOnTimeAfterExtension  int64 = 7
	RepaidLateAfterExtension    int64 = 2
	RepaidWithPartialAgreementMet int64 = 8
	Defaulted                   int64 = -50
	LentSuccessfullyOnTimeOriginal      int64 = 5
	LentSuccessfullyAfterModification   int64 = 3
	LenderApprovedExtension     int64 = 2
	LenderApprovedPartialAgreement int64 = 1
	LenderRejectedModification  int64 = 0
	VouchDefaultedVoucher       int64 = -20
)
