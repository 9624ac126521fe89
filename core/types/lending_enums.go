package types

// ModificationType enumerates the kinds of term modification a borrower may
// request against an active LoanAgreement. It is shared between the lending
// and reputation packages (the latter never imports the former) so both can
// reason about the same request/response vocabulary without a dependency
// cycle.
type ModificationType uint8

const (
	// ModificationNone means no modification is currently requested.
	ModificationNone ModificationType = iota
	// ModificationDueDateExtension requests the due date be pushed out to a
	// new timestamp.
	ModificationDueDateExtension
	// ModificationPartialPaymentAgreement requests the lender accept a
	// partial payment plan before the loan is considered current again.
	ModificationPartialPaymentAgreement
)

// String implements fmt.Stringer for readable logs and event attributes.
func (m ModificationType) String() string {
	switch m {
	case ModificationDueDateExtension:
		return "due_date_extension"
	case ModificationPartialPaymentAgreement:
		return "partial_payment_agreement"
	default:
		return "none"
	}
}

// PaymentOutcome classifies how a settled loan's final repayment related to
// its due date and any approved modification. Defaulted loans are handled by
// a separate code path (Lending.handle_default / Reputation.record_loan_default)
// and never carry a PaymentOutcome value.
type PaymentOutcome uint8

const (
	// OutcomeOnTimeOriginal: repaid at or before the original due date, no
	// modification involved.
	OutcomeOnTimeOriginal PaymentOutcome = iota + 1
	// OutcomeLateGraceOriginal: repaid after the due date without an
	// approved due-date extension (the fallback "late grace"
	// classification, which also covers a late settlement after an approved
	// partial-payment agreement).
	OutcomeLateGraceOriginal
	// OutcomeOnTimeExtended: repaid at or before an approved extended due
	// date.
	OutcomeOnTimeExtended
	// OutcomeLateExtended: repaid after an approved extended due date.
	OutcomeLateExtended
	// OutcomePartialAgreementMetAndRepaid: the borrower met an approved
	// partial-payment agreement and then repaid the remainder on or before
	// the due date.
	OutcomePartialAgreementMetAndRepaid
)

// String implements fmt.Stringer for readable logs and event attributes.
func (o PaymentOutcome) String() string {
	switch o {
	case OutcomeOnTimeOriginal:
		return "on_time_original"
	case OutcomeLateGraceOriginal:
		return "late_grace_original"
	case OutcomeOnTimeExtended:
		return "on_time_extended"
	case OutcomeLateExtended:
		return "late_extended"
	case OutcomePartialAgreementMetAndRepaid:
		return "partial_agreement_met_and_repaid"
	default:
		return "unknown"
	}
}
