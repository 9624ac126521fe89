// Package errors collects the module-agnostic sentinel errors shared by the
// registry, reputation, and lending engines, following the teacher's
// core/errors package shape (plain errors.New sentinels, no bespoke error
// framework).
package errors

import stderrors "errors"

var (
	// ErrNotRegistered is returned when an operation requires a registered
	// address and the supplied address has no UserProfile.
	ErrNotRegistered = stderrors.New("account not registered")
	// ErrAlreadyRegistered is returned by UserRegistry.Register when the
	// caller already holds a profile.
	ErrAlreadyRegistered = stderrors.New("account already registered")
	// ErrNameInvalid is returned when a display name is empty or exceeds 50
	// bytes.
	ErrNameInvalid = stderrors.New("name must be 1..=50 bytes")

	// ErrUnauthorized is returned when the caller is not the configured
	// lending authority, owner, lender, or borrower required by the
	// operation.
	ErrUnauthorized = stderrors.New("caller not authorized for this operation")

	// ErrInvalidArgument covers zero amounts, zero durations, mismatched
	// collateral shape, and invalid modification values.
	ErrInvalidArgument = stderrors.New("invalid argument")

	// ErrNotFound is returned for unknown offer, request, agreement, or
	// vouch identifiers.
	ErrNotFound = stderrors.New("not found")

	// ErrIllegalState is returned when an operation is invoked against a
	// LoanAgreement in the wrong status.
	ErrIllegalState = stderrors.New("illegal state for this operation")

	// ErrDoubleSpend is returned when an offer/request is already fulfilled
	// or a vouch is already active for the (voucher, borrower) pair.
	ErrDoubleSpend = stderrors.New("already fulfilled or active")

	// ErrOverPayment is returned when a repayment would exceed the
	// remaining amount due.
	ErrOverPayment = stderrors.New("payment exceeds amount due")

	// ErrNotOverdue is returned when a default is attempted before the due
	// date has passed.
	ErrNotOverdue = stderrors.New("agreement is not yet overdue")

	// ErrAlreadySettled is returned when an operation targets an agreement
	// already in a terminal state.
	ErrAlreadySettled = stderrors.New("agreement already settled")

	// ErrInsufficientBalance surfaces a token collaborator balance check
	// failure.
	ErrInsufficientBalance = stderrors.New("insufficient balance")

	// ErrInsufficientAllowance surfaces a token collaborator allowance check
	// failure.
	ErrInsufficientAllowance = stderrors.New("insufficient allowance")

	// ErrReentrancy is returned when a mutating entry point is re-entered
	// from within its own call stack (e.g. a malicious token callback).
	ErrReentrancy = stderrors.New("reentrant call rejected")
)
