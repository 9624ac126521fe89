package events

import (
	"math/big"
	"strconv"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

const (
	TypeVouchAdded              = "reputation.vouchAdded"
	TypeVouchRemoved            = "reputation.vouchRemoved"
	TypeVouchSlashed            = "reputation.vouchSlashed"
	TypeReputationUpdated       = "reputation.reputationUpdated"
	TypeLoanTermOutcomeRecorded = "reputation.loanTermOutcomeRecorded"
)

// VouchAdded is emitted by Reputation.add_vouch.
type VouchAdded struct {
	Voucher  types.Address
	Borrower types.Address
	Token    types.Address
	Amount   *big.Int
}

func (VouchAdded) EventType() string { return TypeVouchAdded }

func (e VouchAdded) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeVouchAdded,
		Attributes: map[string]string{
			"voucher":  e.Voucher.String(),
			"borrower": e.Borrower.String(),
			"token":    e.Token.String(),
			"amount":   formatAmount(e.Amount),
		},
	}
}

// VouchRemoved is emitted by Reputation.remove_vouch.
type VouchRemoved struct {
	Voucher        types.Address
	Borrower       types.Address
	Token          types.Address
	RefundedAmount *big.Int
}

func (VouchRemoved) EventType() string { return TypeVouchRemoved }

func (e VouchRemoved) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeVouchRemoved,
		Attributes: map[string]string{
			"voucher":        e.Voucher.String(),
			"borrower":       e.Borrower.String(),
			"token":          e.Token.String(),
			"refundedAmount": formatAmount(e.RefundedAmount),
		},
	}
}

// VouchSlashed is emitted by Reputation.slash_vouch_and_reputation, before
// the paired ReputationUpdated event (§4.2 "order matters for tests").
type VouchSlashed struct {
	Voucher           types.Address
	DefaultingBorrower types.Address
	Token             types.Address
	SlashedAmount     *big.Int
	RemainingStake    *big.Int
	Payee             types.Address
}

func (VouchSlashed) EventType() string { return TypeVouchSlashed }

func (e VouchSlashed) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeVouchSlashed,
		Attributes: map[string]string{
			"voucher":            e.Voucher.String(),
			"defaultingBorrower": e.DefaultingBorrower.String(),
			"token":              e.Token.String(),
			"slashedAmount":      formatAmount(e.SlashedAmount),
			"remainingStake":     formatAmount(e.RemainingStake),
			"payee":              e.Payee.String(),
		},
	}
}

// ReputationUpdated is emitted whenever an account's current_score changes.
type ReputationUpdated struct {
	Address  types.Address
	NewScore int64
	Delta    int64
	Reason   string
}

func (ReputationUpdated) EventType() string { return TypeReputationUpdated }

func (e ReputationUpdated) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeReputationUpdated,
		Attributes: map[string]string{
			"address":  e.Address.String(),
			"newScore": strconv.FormatInt(e.NewScore, 10),
			"delta":    strconv.FormatInt(e.Delta, 10),
			"reason":   e.Reason,
		},
	}
}

// LoanTermOutcomeRecorded is emitted alongside each ReputationUpdated raised
// by record_loan_payment_outcome, carrying the originating agreement and
// payment outcome classification.
type LoanTermOutcomeRecorded struct {
	AgreementID [32]byte
	Party       types.Address
	Delta       int64
	Reason      string
	Outcome     types.PaymentOutcome
}

func (LoanTermOutcomeRecorded) EventType() string { return TypeLoanTermOutcomeRecorded }

func (e LoanTermOutcomeRecorded) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeLoanTermOutcomeRecorded,
		Attributes: map[string]string{
			"agreementId": hexID(e.AgreementID),
			"party":       e.Party.String(),
			"delta":       strconv.FormatInt(e.Delta, 10),
			"reason":      e.Reason,
			"outcome":     e.Outcome.String(),
		},
	}
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
