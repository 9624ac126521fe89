package lending

import (
	"fmt"
	"math/big"

	coreerrors "github.com/GabinFay/uncle-credit-p2p-lending/core/errors"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/events"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
	nativecommon "github.com/GabinFay/uncle-credit-p2p-lending/native/common"
)

func repayableStatus(s Status) bool {
	switch s {
	case StatusActive, StatusOverdue, StatusActivePartialPaymentAgreed:
		return true
	default:
		return false
	}
}

// Repay applies a borrower's payment toward an agreement's total_due
// (§4.3, §6.4). total_due = principal + principal*rate_bps/10_000,
// truncating toward zero.
func (e *Engine) Repay(caller types.Address, agreementID [32]byte, paymentAmount *big.Int) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	if paymentAmount == nil || paymentAmount.Sign() <= 0 {
		return fmt.Errorf("%w: payment amount must be positive", coreerrors.ErrInvalidArgument)
	}

	agreement, ok, err := e.state.GetAgreement(agreementID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %x", coreerrors.ErrNotFound, agreementID)
	}
	if caller != agreement.Borrower {
		return fmt.Errorf("%w: only the borrower may repay", coreerrors.ErrUnauthorized)
	}
	if agreement.Status.IsTerminal() {
		return fmt.Errorf("%w: agreement already settled", coreerrors.ErrAlreadySettled)
	}
	if !repayableStatus(agreement.Status) {
		return fmt.Errorf("%w: agreement is not in a repayable state", coreerrors.ErrIllegalState)
	}

	now := e.nowFn()
	if agreement.Status == StatusActive && now > agreement.DueDate {
		agreement.Status = StatusOverdue
	}

	totalDue := agreement.TotalDue()
	newPaid := new(big.Int).Add(agreement.AmountPaid, paymentAmount)
	if newPaid.Cmp(totalDue) > 0 {
		return fmt.Errorf("%w: payment would exceed total_due", coreerrors.ErrOverPayment)
	}

	loanTok, err := e.tokens.Token(agreement.LoanToken)
	if err != nil {
		return err
	}
	if err := loanTok.TransferFrom(e.vault, caller, agreement.Lender, paymentAmount); err != nil {
		return err
	}

	agreement.AmountPaid = newPaid
	wasPartialAgreed := agreement.Status == StatusActivePartialPaymentAgreed

	settled := newPaid.Cmp(totalDue) >= 0
	if !settled && wasPartialAgreed && paymentAmount.Cmp(big.NewInt(agreement.RequestedModificationValue)) == 0 {
		if now > agreement.DueDate {
			agreement.Status = StatusOverdue
		} else {
			agreement.Status = StatusActive
		}
	}

	nextStatus := agreement.Status
	if settled {
		nextStatus = StatusRepaid
	}
	e.emitter.Emit(events.LoanRepayment{AgreementID: agreementID, Borrower: caller, PaymentAmount: new(big.Int).Set(paymentAmount), AmountPaid: new(big.Int).Set(newPaid), NextStatus: nextStatus.String()})

	if settled {
		if err := e.settleRepaid(agreement, now); err != nil {
			return err
		}
	}

	if err := e.state.PutAgreement(agreementID, agreement); err != nil {
		return err
	}
	e.logger.Info("lending.repay", "agreementId", fmt.Sprintf("%x", agreementID), "paymentAmount", paymentAmount.String(), "status", agreement.Status.String())
	return nil
}

func (e *Engine) settleRepaid(agreement *LoanAgreement, now int64) error {
	agreement.Status = StatusRepaid

	if agreement.CollateralAmount.Sign() > 0 {
		collateralTok, err := e.tokens.Token(agreement.CollateralToken)
		if err != nil {
			return err
		}
		if err := collateralTok.Transfer(e.vault, agreement.Borrower, agreement.CollateralAmount); err != nil {
			return err
		}
	}

	outcome := classifyOutcome(now, agreement.DueDate, agreement.RequestedModificationType, agreement.ModificationApprovedByLender)
	if err := e.reputation.RecordLoanPaymentOutcome(e.address, agreement.ID, agreement.Borrower, agreement.Lender, agreement.PrincipalAmount, outcome, agreement.RequestedModificationType, agreement.ModificationApprovedByLender); err != nil {
		return err
	}

	e.emitter.Emit(events.LoanAgreementRepaid{
		AgreementID: agreement.ID,
		Borrower:    agreement.Borrower,
		Lender:      agreement.Lender,
		TotalPaid:   new(big.Int).Set(agreement.AmountPaid),
		Outcome:     outcome,
	})
	e.metrics.IncLoanRepaid()
	return nil
}

// RequestModification lets a borrower propose a due-date extension or a
// partial-payment agreement on an in-flight agreement (§4.3).
func (e *Engine) RequestModification(caller types.Address, agreementID [32]byte, modType types.ModificationType, value int64) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	if modType != types.ModificationDueDateExtension && modType != types.ModificationPartialPaymentAgreement {
		return fmt.Errorf("%w: unsupported modification type", coreerrors.ErrInvalidArgument)
	}
	if value <= 0 {
		return fmt.Errorf("%w: modification value must be positive", coreerrors.ErrInvalidArgument)
	}

	agreement, ok, err := e.state.GetAgreement(agreementID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %x", coreerrors.ErrNotFound, agreementID)
	}
	if caller != agreement.Borrower {
		return fmt.Errorf("%w: only the borrower may request a modification", coreerrors.ErrUnauthorized)
	}
	if agreement.Status != StatusActive && agreement.Status != StatusOverdue {
		return fmt.Errorf("%w: modifications may only be requested while Active or Overdue", coreerrors.ErrIllegalState)
	}
	if modType == types.ModificationDueDateExtension && value <= agreement.DueDate {
		return fmt.Errorf("%w: extended due date must be later than the current due date", coreerrors.ErrInvalidArgument)
	}

	agreement.RequestedModificationType = modType
	agreement.RequestedModificationValue = value
	agreement.ModificationApprovedByLender = false
	agreement.Status = StatusPendingModificationApproval
	if err := e.state.PutAgreement(agreementID, agreement); err != nil {
		return err
	}

	e.emitter.Emit(events.PaymentModificationRequested{AgreementID: agreementID, Borrower: caller, Type: modType, Value: value})
	e.logger.Info("lending.requestModification", "agreementId", fmt.Sprintf("%x", agreementID), "type", modType.String(), "value", value)
	return nil
}

// RespondToModification lets a lender approve or reject a pending
// modification request (§4.3).
func (e *Engine) RespondToModification(caller types.Address, agreementID [32]byte, approved bool) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}

	agreement, ok, err := e.state.GetAgreement(agreementID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %x", coreerrors.ErrNotFound, agreementID)
	}
	if caller != agreement.Lender {
		return fmt.Errorf("%w: only the lender may respond to a modification", coreerrors.ErrUnauthorized)
	}
	if agreement.Status != StatusPendingModificationApproval {
		return fmt.Errorf("%w: no modification is pending approval", coreerrors.ErrIllegalState)
	}

	now := e.nowFn()
	modType := agreement.RequestedModificationType
	agreement.ModificationApprovedByLender = approved

	if !approved {
		if now > agreement.DueDate {
			agreement.Status = StatusOverdue
		} else {
			agreement.Status = StatusActive
		}
	} else {
		switch modType {
		case types.ModificationDueDateExtension:
			agreement.DueDate = agreement.RequestedModificationValue
			if now > agreement.DueDate {
				agreement.Status = StatusOverdue
			} else {
				agreement.Status = StatusActive
			}
		case types.ModificationPartialPaymentAgreement:
			agreement.Status = StatusActivePartialPaymentAgreed
		default:
			return fmt.Errorf("%w: unsupported modification type", coreerrors.ErrIllegalState)
		}
	}

	if err := e.state.PutAgreement(agreementID, agreement); err != nil {
		return err
	}

	e.emitter.Emit(events.PaymentModificationResponded{AgreementID: agreementID, Lender: caller, Approved: approved, Type: modType, NextStatus: agreement.Status.String()})
	e.logger.Info("lending.respondToModification", "agreementId", fmt.Sprintf("%x", agreementID), "approved", approved, "status", agreement.Status.String())
	return nil
}

// HandleDefault explicitly settles an overdue, underpaid agreement as
// Defaulted, seizes any collateral to the lender, and slashes every active
// voucher backing the borrower (§4.3, §6.4).
func (e *Engine) HandleDefault(caller types.Address, agreementID [32]byte) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}

	agreement, ok, err := e.state.GetAgreement(agreementID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %x", coreerrors.ErrNotFound, agreementID)
	}
	if agreement.Status.IsTerminal() {
		return fmt.Errorf("%w: agreement already settled", coreerrors.ErrAlreadySettled)
	}
	if agreement.Status != StatusActive && agreement.Status != StatusOverdue {
		return fmt.Errorf("%w: agreement is not eligible for default", coreerrors.ErrIllegalState)
	}

	now := e.nowFn()
	totalDue := agreement.TotalDue()
	if now <= agreement.DueDate || agreement.AmountPaid.Cmp(totalDue) >= 0 {
		return fmt.Errorf("%w: agreement is not overdue and underpaid", coreerrors.ErrNotOverdue)
	}

	agreement.Status = StatusDefaulted
	if err := e.state.PutAgreement(agreementID, agreement); err != nil {
		return err
	}

	if agreement.CollateralAmount.Sign() > 0 {
		collateralTok, err := e.tokens.Token(agreement.CollateralToken)
		if err != nil {
			return err
		}
		if err := collateralTok.Transfer(e.vault, agreement.Lender, agreement.CollateralAmount); err != nil {
			return err
		}
		e.emitter.Emit(events.CollateralSeized{AgreementID: agreementID, Borrower: agreement.Borrower, Lender: agreement.Lender, CollateralAmount: new(big.Int).Set(agreement.CollateralAmount), CollateralToken: agreement.CollateralToken})
		seized, _ := new(big.Float).SetInt(agreement.CollateralAmount).Float64()
		e.metrics.AddCollateralSeized(seized)
	}

	e.emitter.Emit(events.LoanAgreementDefaulted{AgreementID: agreementID, Borrower: agreement.Borrower, Lender: agreement.Lender, AmountPaid: new(big.Int).Set(agreement.AmountPaid), TotalDue: totalDue})
	e.metrics.IncLoanDefaulted()

	if err := e.reputation.RecordLoanDefault(e.address, agreementID, agreement.Borrower, agreement.Lender, agreement.PrincipalAmount); err != nil {
		return err
	}

	vouches, err := e.reputation.ActiveVouchesForBorrower(agreement.Borrower)
	if err != nil {
		return err
	}
	for _, v := range vouches {
		slash := computeSlashAmount(v.StakedAmount)
		if slash.Sign() <= 0 {
			continue
		}
		if err := e.reputation.SlashVouchAndReputation(e.address, v.Voucher, agreement.Borrower, slash, agreement.Lender); err != nil {
			return err
		}
	}

	e.logger.Info("lending.handleDefault", "agreementId", fmt.Sprintf("%x", agreementID), "borrower", agreement.Borrower.String(), "lender", agreement.Lender.String())
	return nil
}

// computeSlashAmount implements §6.4: slash = max(1, stake*1000/10_000)
// when the floor division is zero but stake is positive, capped at the
// current stake.
func computeSlashAmount(stake *big.Int) *big.Int {
	if stake == nil || stake.Sign() <= 0 {
		return big.NewInt(0)
	}
	slash := new(big.Int).Mul(stake, big.NewInt(slashBpsOfStake))
	slash.Div(slash, big.NewInt(10_000))
	if slash.Sign() == 0 {
		slash = big.NewInt(1)
	}
	if slash.Cmp(stake) > 0 {
		slash = new(big.Int).Set(stake)
	}
	return slash
}
