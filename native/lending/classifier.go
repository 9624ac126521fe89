package lending

import "github.com/GabinFay/uncle-credit-p2p-lending/core/types"

// classifyOutcome implements the first-match-wins payment outcome
// classifier of §4.4. modificationTypeBefore/lenderApprovedBefore describe
// the agreement's modification fields as they stand at settlement time,
// read as-is: RequestedModificationType/ModificationApprovedByLender are
// never cleared on a repayment, only overwritten by the next
// RequestModification call, so they still reflect the last modification
// ever negotiated on this agreement even after an
// Active_PartialPaymentAgreed settlement.
func classifyOutcome(now, dueDate int64, modificationTypeBefore types.ModificationType, lenderApprovedBefore bool) types.PaymentOutcome {
	onTime := now <= dueDate
	switch {
	case onTime && lenderApprovedBefore && modificationTypeBefore == types.ModificationDueDateExtension:
		return types.OutcomeOnTimeExtended
	case onTime && lenderApprovedBefore && modificationTypeBefore == types.ModificationPartialPaymentAgreement:
		return types.OutcomePartialAgreementMetAndRepaid
	case onTime:
		return types.OutcomeOnTimeOriginal
	case !onTime && lenderApprovedBefore && modificationTypeBefore == types.ModificationDueDateExtension:
		return types.OutcomeLateExtended
	default:
		return types.OutcomeLateGraceOriginal
	}
}
