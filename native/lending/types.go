// Package lending implements the Lending state machine (§4.3): loan offers
// and requests, their negotiation into agreements, repayment, negotiated
// term modification, and default handling. Lending is the sole caller of
// Reputation's sensitive mutators and the only module that moves principal
// and collateral value.
package lending

import (
	"math/big"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

// Address aliases the shared 20-byte account identifier (§3).
type Address = types.Address

// Status is the LoanAgreement lifecycle state (§4.3).
type Status uint8

const (
	StatusActive Status = iota + 1
	StatusOverdue
	StatusPendingModificationApproval
	StatusActivePartialPaymentAgreed
	StatusRepaid
	StatusDefaulted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusOverdue:
		return "Overdue"
	case StatusPendingModificationApproval:
		return "PendingModificationApproval"
	case StatusActivePartialPaymentAgreed:
		return "Active_PartialPaymentAgreed"
	case StatusRepaid:
		return "Repaid"
	case StatusDefaulted:
		return "Defaulted"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusRepaid || s == StatusDefaulted || s == StatusCancelled
}

// LoanOffer is a lender-posted standing offer to lend (§3.4). While Active,
// Lending holds exactly Amount of Token in custody.
type LoanOffer struct {
	ID                       [32]byte
	Lender                   Address
	Amount                   *big.Int
	Token                    Address
	InterestRateBps          uint16
	DurationSeconds          uint64
	RequiredCollateralAmount *big.Int
	CollateralToken          Address
	Active                   bool
	Fulfilled                bool
}

// Clone returns a deep copy.
func (o *LoanOffer) Clone() *LoanOffer {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Amount = new(big.Int).Set(nz(o.Amount))
	clone.RequiredCollateralAmount = new(big.Int).Set(nz(o.RequiredCollateralAmount))
	return &clone
}

// LoanRequest is a borrower-posted standing request to borrow (§3.5).
// Collateral is NOT pre-escrowed; it is pulled only at funding time.
type LoanRequest struct {
	ID                      [32]byte
	Borrower                Address
	Amount                  *big.Int
	Token                   Address
	ProposedInterestRateBps uint16
	ProposedDurationSeconds uint64
	OfferedCollateralAmount *big.Int
	CollateralToken         Address
	Active                  bool
	Fulfilled               bool
}

// Clone returns a deep copy.
func (r *LoanRequest) Clone() *LoanRequest {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Amount = new(big.Int).Set(nz(r.Amount))
	clone.OfferedCollateralAmount = new(big.Int).Set(nz(r.OfferedCollateralAmount))
	return &clone
}

// LoanAgreement is the live contract between a lender and a borrower
// (§3.6). Collateral remains held while Status is one of Active, Overdue,
// PendingModificationApproval, or Active_PartialPaymentAgreed.
type LoanAgreement struct {
	ID [32]byte

	// Exactly one of OriginOfferID / OriginRequestID is non-zero.
	OriginOfferID   [32]byte
	OriginRequestID [32]byte

	Lender   Address
	Borrower Address

	PrincipalAmount *big.Int
	LoanToken       Address
	InterestRateBps uint16
	DurationSeconds uint64

	CollateralAmount *big.Int
	CollateralToken  Address

	StartTime int64
	DueDate   int64

	AmountPaid *big.Int
	Status     Status

	RequestedModificationType    types.ModificationType
	RequestedModificationValue   int64
	ModificationApprovedByLender bool
}

// Clone returns a deep copy.
func (a *LoanAgreement) Clone() *LoanAgreement {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PrincipalAmount = new(big.Int).Set(nz(a.PrincipalAmount))
	clone.CollateralAmount = new(big.Int).Set(nz(a.CollateralAmount))
	clone.AmountPaid = new(big.Int).Set(nz(a.AmountPaid))
	return &clone
}

// TotalDue computes principal + principal*rate_bps/10_000, truncating
// toward zero (§6.4). Wide multiplication via big.Int avoids overflow.
func (a *LoanAgreement) TotalDue() *big.Int {
	principal := nz(a.PrincipalAmount)
	interest := new(big.Int).Mul(principal, big.NewInt(int64(a.InterestRateBps)))
	interest.Div(interest, big.NewInt(bpsDenominator))
	return new(big.Int).Add(principal, interest)
}

// HoldsCollateral reports whether this agreement's status requires
// collateral still be held in custody.
func (a *LoanAgreement) HoldsCollateral() bool {
	switch a.Status {
	case StatusActive, StatusOverdue, StatusPendingModificationApproval, StatusActivePartialPaymentAgreed:
		return true
	default:
		return false
	}
}

const bpsDenominator = 10_000

func nz(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
