package events

import (
	"math/big"
	"strconv"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

const (
	TypeLoanOfferCreated              = "lending.loanOfferCreated"
	TypeLoanRequestCreated            = "lending.loanRequestCreated"
	TypeLoanAgreementCreated          = "lending.loanAgreementCreated"
	TypeLoanRepayment                 = "lending.loanRepayment"
	TypeLoanAgreementRepaid           = "lending.loanAgreementRepaid"
	TypeLoanAgreementDefaulted        = "lending.loanAgreementDefaulted"
	TypeCollateralSeized              = "lending.collateralSeized"
	TypePaymentModificationRequested  = "lending.paymentModificationRequested"
	TypePaymentModificationResponded  = "lending.paymentModificationResponded"
)

// LoanOfferCreated is emitted by Lending.create_offer.
type LoanOfferCreated struct {
	OfferID          [32]byte
	Lender           types.Address
	Amount           *big.Int
	Token            types.Address
	InterestRateBps  uint16
	DurationSeconds  uint64
}

func (LoanOfferCreated) EventType() string { return TypeLoanOfferCreated }

func (e LoanOfferCreated) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeLoanOfferCreated,
		Attributes: map[string]string{
			"offerId":         hexID(e.OfferID),
			"lender":          e.Lender.String(),
			"amount":          formatAmount(e.Amount),
			"token":           e.Token.String(),
			"interestRateBps": strconv.FormatUint(uint64(e.InterestRateBps), 10),
			"durationSeconds": strconv.FormatUint(e.DurationSeconds, 10),
		},
	}
}

// LoanRequestCreated is emitted by Lending.create_request.
type LoanRequestCreated struct {
	RequestID       [32]byte
	Borrower        types.Address
	Amount          *big.Int
	Token           types.Address
	InterestRateBps uint16
	DurationSeconds uint64
}

func (LoanRequestCreated) EventType() string { return TypeLoanRequestCreated }

func (e LoanRequestCreated) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeLoanRequestCreated,
		Attributes: map[string]string{
			"requestId":       hexID(e.RequestID),
			"borrower":        e.Borrower.String(),
			"amount":          formatAmount(e.Amount),
			"token":           e.Token.String(),
			"interestRateBps": strconv.FormatUint(uint64(e.InterestRateBps), 10),
			"durationSeconds": strconv.FormatUint(e.DurationSeconds, 10),
		},
	}
}

// LoanAgreementCreated is emitted on accept_offer/fund_request once the
// agreement is formed.
type LoanAgreementCreated struct {
	AgreementID      [32]byte
	Lender           types.Address
	Borrower         types.Address
	PrincipalAmount  *big.Int
	LoanToken        types.Address
	CollateralAmount *big.Int
	CollateralToken  types.Address
	DueDate          int64
}

func (LoanAgreementCreated) EventType() string { return TypeLoanAgreementCreated }

func (e LoanAgreementCreated) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeLoanAgreementCreated,
		Attributes: map[string]string{
			"agreementId":      hexID(e.AgreementID),
			"lender":           e.Lender.String(),
			"borrower":         e.Borrower.String(),
			"principalAmount":  formatAmount(e.PrincipalAmount),
			"loanToken":        e.LoanToken.String(),
			"collateralAmount": formatAmount(e.CollateralAmount),
			"collateralToken":  e.CollateralToken.String(),
			"dueDate":          strconv.FormatInt(e.DueDate, 10),
		},
	}
}

// LoanRepayment is emitted on every accepted repay() call, regardless of
// whether it settles the agreement.
type LoanRepayment struct {
	AgreementID   [32]byte
	Borrower      types.Address
	PaymentAmount *big.Int
	AmountPaid    *big.Int
	NextStatus    string
}

func (LoanRepayment) EventType() string { return TypeLoanRepayment }

func (e LoanRepayment) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeLoanRepayment,
		Attributes: map[string]string{
			"agreementId":   hexID(e.AgreementID),
			"borrower":      e.Borrower.String(),
			"paymentAmount": formatAmount(e.PaymentAmount),
			"amountPaid":    formatAmount(e.AmountPaid),
			"nextStatus":    e.NextStatus,
		},
	}
}

// LoanAgreementRepaid is emitted once amount_paid reaches total_due.
type LoanAgreementRepaid struct {
	AgreementID    [32]byte
	Borrower       types.Address
	Lender         types.Address
	TotalPaid      *big.Int
	Outcome        types.PaymentOutcome
}

func (LoanAgreementRepaid) EventType() string { return TypeLoanAgreementRepaid }

func (e LoanAgreementRepaid) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeLoanAgreementRepaid,
		Attributes: map[string]string{
			"agreementId": hexID(e.AgreementID),
			"borrower":    e.Borrower.String(),
			"lender":      e.Lender.String(),
			"totalPaid":   formatAmount(e.TotalPaid),
			"outcome":     e.Outcome.String(),
		},
	}
}

// LoanAgreementDefaulted is emitted by handle_default.
type LoanAgreementDefaulted struct {
	AgreementID [32]byte
	Borrower    types.Address
	Lender      types.Address
	AmountPaid  *big.Int
	TotalDue    *big.Int
}

func (LoanAgreementDefaulted) EventType() string { return TypeLoanAgreementDefaulted }

func (e LoanAgreementDefaulted) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeLoanAgreementDefaulted,
		Attributes: map[string]string{
			"agreementId": hexID(e.AgreementID),
			"borrower":    e.Borrower.String(),
			"lender":      e.Lender.String(),
			"amountPaid":  formatAmount(e.AmountPaid),
			"totalDue":    formatAmount(e.TotalDue),
		},
	}
}

// CollateralSeized is emitted by handle_default when the agreement carried
// non-zero collateral.
type CollateralSeized struct {
	AgreementID      [32]byte
	Borrower         types.Address
	Lender           types.Address
	CollateralAmount *big.Int
	CollateralToken  types.Address
}

func (CollateralSeized) EventType() string { return TypeCollateralSeized }

func (e CollateralSeized) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypeCollateralSeized,
		Attributes: map[string]string{
			"agreementId":      hexID(e.AgreementID),
			"borrower":         e.Borrower.String(),
			"lender":           e.Lender.String(),
			"collateralAmount": formatAmount(e.CollateralAmount),
			"collateralToken":  e.CollateralToken.String(),
		},
	}
}

// PaymentModificationRequested is emitted by request_modification.
type PaymentModificationRequested struct {
	AgreementID [32]byte
	Borrower    types.Address
	Type        types.ModificationType
	Value       int64
}

func (PaymentModificationRequested) EventType() string { return TypePaymentModificationRequested }

func (e PaymentModificationRequested) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypePaymentModificationRequested,
		Attributes: map[string]string{
			"agreementId": hexID(e.AgreementID),
			"borrower":    e.Borrower.String(),
			"type":        e.Type.String(),
			"value":       strconv.FormatInt(e.Value, 10),
		},
	}
}

// PaymentModificationResponded is emitted by respond_to_modification.
type PaymentModificationResponded struct {
	AgreementID [32]byte
	Lender      types.Address
	Approved    bool
	Type        types.ModificationType
	NextStatus  string
}

func (PaymentModificationResponded) EventType() string { return TypePaymentModificationResponded }

func (e PaymentModificationResponded) ToLogEvent() *types.Event {
	return &types.Event{
		Type: TypePaymentModificationResponded,
		Attributes: map[string]string{
			"agreementId": hexID(e.AgreementID),
			"lender":      e.Lender.String(),
			"approved":    strconv.FormatBool(e.Approved),
			"type":        e.Type.String(),
			"nextStatus":  e.NextStatus,
		},
	}
}
