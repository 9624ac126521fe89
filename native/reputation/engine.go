package reputation

import (
	"fmt"
	"log/slog"
	"math/big"
	"time"

	coreerrors "github.com/GabinFay/uncle-credit-p2p-lending/core/errors"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/events"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/token"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
	nativecommon "github.com/GabinFay/uncle-credit-p2p-lending/native/common"
	"github.com/GabinFay/uncle-credit-p2p-lending/observability/metrics"
)

// ModuleName is the identifier passed to PauseView.IsPaused for this module.
const ModuleName = "reputation"

// registryView is the narrow slice of UserRegistry that Reputation depends
// on (§2: "Reputation depends on UserRegistry"). It never reaches back into
// Lending.
type registryView interface {
	IsRegistered(addr types.Address) (bool, error)
}

// Engine implements the Reputation operations of §4.2. Its sensitive
// mutators (SlashVouchAndReputation, RecordLoanPaymentOutcome,
// RecordLoanDefault) are gated to a single configured lending authority
// address, per §9's "interface-handle pattern": the caller identity is
// checked, not a capability object, since Go has no implicit sender.
type Engine struct {
	state    state
	registry registryView
	tokens   token.Registry

	owner            types.Address
	lendingAuthority types.Address
	vault            types.Address

	pauses  nativecommon.PauseView
	emitter events.Emitter
	guard   nativecommon.ReentrancyGuard
	logger  *slog.Logger
	nowFn   func() int64
	metrics *metrics.LendingMetrics
}

// NewEngine constructs an Engine with owner as the initial, transferable
// administrator (§4.2: "Owner set at construction, transferable").
func NewEngine(st state, registry registryView, tokens token.Registry, owner, vault types.Address, pauses nativecommon.PauseView, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		state:    st,
		registry: registry,
		tokens:   tokens,
		owner:    owner,
		vault:    vault,
		emitter:  events.NoopEmitter{},
		pauses:   pauses,
		logger:   logger,
		nowFn:    func() int64 { return time.Now().Unix() },
	}
}

// SetEmitter installs the event sink.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

// SetMetrics installs the Prometheus instrumentation handle.
func (e *Engine) SetMetrics(m *metrics.LendingMetrics) {
	e.metrics = m
}

// SetNowFunc overrides the clock; tests use this for deterministic outcome
// classification.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	e.nowFn = now
}

// SetLendingAuthority rotates the address authorized to call the sensitive
// mutators (§5: "Admin owner may rotate Lending authority address in
// Reputation; no other privileged ops"). Only the current owner may call
// this.
func (e *Engine) SetLendingAuthority(caller types.Address, authority types.Address) error {
	if caller != e.owner {
		return fmt.Errorf("%w: only owner may set lending authority", coreerrors.ErrUnauthorized)
	}
	e.lendingAuthority = authority
	return nil
}

// TransferOwnership rotates administrative ownership of this Engine.
func (e *Engine) TransferOwnership(caller types.Address, newOwner types.Address) error {
	if caller != e.owner {
		return fmt.Errorf("%w: only owner may transfer ownership", coreerrors.ErrUnauthorized)
	}
	e.owner = newOwner
	return nil
}

func (e *Engine) requireAuthority(caller types.Address) error {
	if e.lendingAuthority.IsZero() || caller != e.lendingAuthority {
		return fmt.Errorf("%w: caller is not the configured lending authority", coreerrors.ErrUnauthorized)
	}
	return nil
}

func (e *Engine) ensureRegistered(addr types.Address) error {
	ok, err := e.registry.IsRegistered(addr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", coreerrors.ErrNotRegistered, addr.String())
	}
	return nil
}

func (e *Engine) profileOrNew(addr types.Address) (*ReputationProfile, error) {
	profile, ok, err := e.state.GetProfile(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		profile = NewReputationProfile()
	}
	return profile, nil
}

// AddVouch stakes amount of token from caller in support of borrower
// (§4.2). Exactly one active vouch may exist per (caller, borrower) pair.
func (e *Engine) AddVouch(caller, borrower types.Address, amount *big.Int, tokenID types.Address) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	if err := e.ensureRegistered(caller); err != nil {
		return err
	}
	if err := e.ensureRegistered(borrower); err != nil {
		return err
	}
	if caller == borrower {
		return fmt.Errorf("%w: voucher cannot vouch for itself", coreerrors.ErrInvalidArgument)
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", coreerrors.ErrInvalidArgument)
	}
	if tokenID.IsZero() {
		return fmt.Errorf("%w: token must not be the zero sentinel", coreerrors.ErrInvalidArgument)
	}

	existing, ok, err := e.state.GetVouch(caller, borrower)
	if err != nil {
		return err
	}
	if ok && existing.Active {
		return fmt.Errorf("%w: an active vouch already exists for this pair", coreerrors.ErrDoubleSpend)
	}

	tok, err := e.tokens.Token(tokenID)
	if err != nil {
		return err
	}
	// Pull before mutation (§5 checks-effects-interactions). The vault acts
	// as both spender and destination: caller must have approved the vault
	// address beforehand.
	if err := tok.TransferFrom(e.vault, caller, e.vault, amount); err != nil {
		return err
	}

	vouch := &Vouch{Voucher: caller, Borrower: borrower, Token: tokenID, StakedAmount: new(big.Int).Set(amount), Active: true}
	if err := e.state.PutVouch(caller, borrower, vouch); err != nil {
		return err
	}

	profile, err := e.profileOrNew(caller)
	if err != nil {
		return err
	}
	profile.TimesVouched++
	profile.VouchingStakeActive = new(big.Int).Add(nz(profile.VouchingStakeActive), amount)
	if err := e.state.PutProfile(caller, profile); err != nil {
		return err
	}

	e.emitter.Emit(events.VouchAdded{Voucher: caller, Borrower: borrower, Token: tokenID, Amount: new(big.Int).Set(amount)})
	e.metrics.IncVouchAdded()
	e.logger.Info("reputation.addVouch", "voucher", caller.String(), "borrower", borrower.String(), "amount", amount.String())
	return nil
}

// RemoveVouch voluntarily withdraws an active vouch, refunding the
// remaining stake to the voucher (§4.2).
func (e *Engine) RemoveVouch(caller, borrower types.Address) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}

	vouch, ok, err := e.state.GetVouch(caller, borrower)
	if err != nil {
		return err
	}
	if !ok || !vouch.Active {
		return fmt.Errorf("%w: no active vouch for this pair", coreerrors.ErrNotFound)
	}

	tok, err := e.tokens.Token(vouch.Token)
	if err != nil {
		return err
	}
	refund := new(big.Int).Set(vouch.StakedAmount)
	if err := tok.Transfer(e.vault, caller, refund); err != nil {
		return err
	}

	vouch.Active = false
	vouch.StakedAmount = big.NewInt(0)
	if err := e.state.PutVouch(caller, borrower, vouch); err != nil {
		return err
	}

	profile, err := e.profileOrNew(caller)
	if err != nil {
		return err
	}
	profile.VouchingStakeActive = new(big.Int).Sub(nz(profile.VouchingStakeActive), refund)
	if profile.VouchingStakeActive.Sign() < 0 {
		profile.VouchingStakeActive = big.NewInt(0)
	}
	if err := e.state.PutProfile(caller, profile); err != nil {
		return err
	}

	e.emitter.Emit(events.VouchRemoved{Voucher: caller, Borrower: borrower, Token: vouch.Token, RefundedAmount: refund})
	e.metrics.IncVouchRemoved()
	e.logger.Info("reputation.removeVouch", "voucher", caller.String(), "borrower", borrower.String(), "refunded", refund.String())
	return nil
}

// SlashVouchAndReputation is called exclusively by the lending authority
// when a vouched-for borrower defaults (§4.2). Event emission order is
// VouchSlashed THEN ReputationUpdated — order matters for downstream
// indexers and is asserted exactly in tests.
func (e *Engine) SlashVouchAndReputation(caller, voucher, defaultingBorrower types.Address, amountToSlash *big.Int, payee types.Address) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	if err := e.requireAuthority(caller); err != nil {
		return err
	}

	vouch, ok, err := e.state.GetVouch(voucher, defaultingBorrower)
	if err != nil {
		return err
	}
	if !ok || !vouch.Active {
		return fmt.Errorf("%w: no active vouch for this pair", coreerrors.ErrNotFound)
	}
	if amountToSlash == nil || amountToSlash.Sign() <= 0 || amountToSlash.Cmp(vouch.StakedAmount) > 0 {
		return fmt.Errorf("%w: slash amount must be in (0, staked_amount]", coreerrors.ErrInvalidArgument)
	}

	tok, err := e.tokens.Token(vouch.Token)
	if err != nil {
		return err
	}
	if err := tok.Transfer(e.vault, payee, amountToSlash); err != nil {
		return err
	}

	remaining := new(big.Int).Sub(vouch.StakedAmount, amountToSlash)
	vouch.StakedAmount = remaining
	if remaining.Sign() == 0 {
		vouch.Active = false
	}
	if err := e.state.PutVouch(voucher, defaultingBorrower, vouch); err != nil {
		return err
	}

	profile, err := e.profileOrNew(voucher)
	if err != nil {
		return err
	}
	profile.VouchingStakeActive = new(big.Int).Sub(nz(profile.VouchingStakeActive), amountToSlash)
	if profile.VouchingStakeActive.Sign() < 0 {
		profile.VouchingStakeActive = big.NewInt(0)
	}
	profile.TimesDefaultedAsVoucher++
	profile.CurrentScore += VouchDefaultedVoucher
	if err := e.state.PutProfile(voucher, profile); err != nil {
		return err
	}

	e.emitter.Emit(events.VouchSlashed{
		Voucher:            voucher,
		DefaultingBorrower: defaultingBorrower,
		Token:              vouch.Token,
		SlashedAmount:      new(big.Int).Set(amountToSlash),
		RemainingStake:     new(big.Int).Set(remaining),
		Payee:              payee,
	})
	e.emitter.Emit(events.ReputationUpdated{
		Address:  voucher,
		NewScore: profile.CurrentScore,
		Delta:    VouchDefaultedVoucher,
		Reason:   "Vouch slashed after borrower default",
	})
	e.metrics.IncSlash("borrower_default")
	e.logger.Info("reputation.slashVouch", "voucher", voucher.String(), "borrower", defaultingBorrower.String(), "slashed", amountToSlash.String())
	return nil
}

type outcomeEffect struct {
	delta       int64
	counterFn   func(p *ReputationProfile)
	lenderDelta int64
	lenderReason string
}

func effectFor(outcome types.PaymentOutcome) (outcomeEffect, error) {
	switch outcome {
	case types.OutcomeOnTimeOriginal:
		return outcomeEffect{
			delta:        RepaidOnTimeOriginal,
			counterFn:    func(p *ReputationProfile) { p.LoansRepaidOnTime++ },
			lenderDelta:  LentSuccessfullyOnTimeOriginal,
			lenderReason: "Loan lent and repaid on time (original terms)",
		}, nil
	case types.OutcomeLateGraceOriginal:
		return outcomeEffect{
			delta:        RepaidLateGrace,
			counterFn:    func(p *ReputationProfile) { p.LoansRepaidLateGrace++ },
			lenderDelta:  LentSuccessfullyAfterModification,
			lenderReason: "Loan lent and repaid (late grace)",
		}, nil
	case types.OutcomeOnTimeExtended:
		return outcomeEffect{
			delta:        RepaidOnTimeAfterExtension,
			counterFn:    func(p *ReputationProfile) { p.LoansRepaidOnTime++ },
			lenderDelta:  LentSuccessfullyAfterModification,
			lenderReason: "Loan lent and repaid (on time after extension)",
		}, nil
	case types.OutcomeLateExtended:
		return outcomeEffect{
			delta:        RepaidLateAfterExtension,
			counterFn:    func(p *ReputationProfile) { p.LoansRepaidLateGrace++ },
			lenderDelta:  LentSuccessfullyAfterModification,
			lenderReason: "Loan lent and repaid (late after extension)",
		}, nil
	case types.OutcomePartialAgreementMetAndRepaid:
		return outcomeEffect{
			delta:        RepaidWithPartialAgreementMet,
			counterFn:    func(p *ReputationProfile) { p.LoansRepaidOnTime++ },
			lenderDelta:  LentSuccessfullyAfterModification,
			lenderReason: "Loan lent and repaid (after partial payment agreement)",
		}, nil
	default:
		return outcomeEffect{}, fmt.Errorf("%w: unrecognized payment outcome %v", coreerrors.ErrInvalidArgument, outcome)
	}
}

// RecordLoanPaymentOutcome is called exclusively by the lending authority
// once an agreement is fully repaid (§4.2). Event emission order, when
// every delta is non-zero, is exactly: ReputationUpdated(borrower),
// LoanTermOutcomeRecorded(borrower), ReputationUpdated(lender),
// LoanTermOutcomeRecorded(lender). A step whose delta is exactly zero is
// skipped entirely (no over-approximation, §7).
func (e *Engine) RecordLoanPaymentOutcome(caller types.Address, agreementID [32]byte, borrower, lender types.Address, principal *big.Int, outcome types.PaymentOutcome, modType types.ModificationType, lenderApproved bool) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	if err := e.requireAuthority(caller); err != nil {
		return err
	}

	effect, err := effectFor(outcome)
	if err != nil {
		return err
	}

	borrowerProfile, err := e.profileOrNew(borrower)
	if err != nil {
		return err
	}
	borrowerProfile.LoansTaken++
	borrowerProfile.TotalValueBorrowed = new(big.Int).Add(nz(borrowerProfile.TotalValueBorrowed), principal)
	effect.counterFn(borrowerProfile)
	borrowerProfile.CurrentScore += effect.delta
	if err := e.state.PutProfile(borrower, borrowerProfile); err != nil {
		return err
	}

	lenderProfile, err := e.profileOrNew(lender)
	if err != nil {
		return err
	}
	lenderProfile.LoansGiven++
	lenderProfile.TotalValueLent = new(big.Int).Add(nz(lenderProfile.TotalValueLent), principal)

	lenderDelta := effect.lenderDelta
	lenderReason := effect.lenderReason
	addOn := int64(0)
	switch {
	case lenderApproved && modType == types.ModificationDueDateExtension:
		addOn = LenderApprovedExtension
		lenderProfile.ModificationsApprovedByLender++
	case lenderApproved && modType == types.ModificationPartialPaymentAgreement:
		addOn = LenderApprovedPartialAgreement
		lenderProfile.ModificationsApprovedByLender++
	case !lenderApproved && modType != types.ModificationNone:
		addOn = LenderRejectedModification
		lenderProfile.ModificationsRejectedByLender++
	}
	if addOn != 0 {
		lenderDelta += addOn
		lenderReason = "Loan outcome and modification handling for lender"
	}
	lenderProfile.CurrentScore += lenderDelta
	if err := e.state.PutProfile(lender, lenderProfile); err != nil {
		return err
	}

	if effect.delta != 0 {
		e.emitter.Emit(events.ReputationUpdated{Address: borrower, NewScore: borrowerProfile.CurrentScore, Delta: effect.delta, Reason: "Loan outcome recorded for borrower"})
		e.emitter.Emit(events.LoanTermOutcomeRecorded{AgreementID: agreementID, Party: borrower, Delta: effect.delta, Reason: "Loan outcome recorded for borrower", Outcome: outcome})
		e.metrics.IncScoreDelta(outcome.String())
	}
	if lenderDelta != 0 {
		e.emitter.Emit(events.ReputationUpdated{Address: lender, NewScore: lenderProfile.CurrentScore, Delta: lenderDelta, Reason: lenderReason})
		e.emitter.Emit(events.LoanTermOutcomeRecorded{AgreementID: agreementID, Party: lender, Delta: lenderDelta, Reason: lenderReason, Outcome: outcome})
		e.metrics.IncScoreDelta("lender_" + outcome.String())
	}

	e.logger.Info("reputation.recordLoanPaymentOutcome", "agreementId", fmt.Sprintf("%x", agreementID), "borrower", borrower.String(), "lender", lender.String(), "outcome", outcome.String())
	return nil
}

// RecordLoanDefault is called exclusively by the lending authority when an
// agreement transitions to Defaulted (§4.2).
func (e *Engine) RecordLoanDefault(caller types.Address, agreementID [32]byte, borrower, lender types.Address, principal *big.Int) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	if err := e.requireAuthority(caller); err != nil {
		return err
	}

	borrowerProfile, err := e.profileOrNew(borrower)
	if err != nil {
		return err
	}
	borrowerProfile.LoansTaken++
	borrowerProfile.LoansDefaulted++
	borrowerProfile.TotalValueBorrowed = new(big.Int).Add(nz(borrowerProfile.TotalValueBorrowed), principal)
	borrowerProfile.CurrentScore += Defaulted
	if err := e.state.PutProfile(borrower, borrowerProfile); err != nil {
		return err
	}

	e.emitter.Emit(events.ReputationUpdated{Address: borrower, NewScore: borrowerProfile.CurrentScore, Delta: Defaulted, Reason: "Loan defaulted"})
	e.metrics.IncScoreDelta("defaulted")
	e.logger.Info("reputation.recordLoanDefault", "agreementId", fmt.Sprintf("%x", agreementID), "borrower", borrower.String(), "lender", lender.String())
	return nil
}

// Profile returns a defensive copy of addr's reputation profile.
func (e *Engine) Profile(addr types.Address) (*ReputationProfile, bool, error) {
	return e.state.GetProfile(addr)
}

// VouchDetails returns the vouch for a specific (voucher, borrower) pair.
func (e *Engine) VouchDetails(voucher, borrower types.Address) (*Vouch, bool, error) {
	return e.state.GetVouch(voucher, borrower)
}

// VouchesGiven lists, for every borrower voucher has ever vouched for, the
// current record of that pair, active or not. A pair vouched for again
// after removal appears once, with its latest stake.
func (e *Engine) VouchesGiven(voucher types.Address) ([]*Vouch, error) {
	return e.state.VouchesGiven(voucher)
}

// VouchesReceived lists, for every voucher that has ever vouched for
// borrower, the current record of that pair, active or not.
func (e *Engine) VouchesReceived(borrower types.Address) ([]*Vouch, error) {
	return e.state.VouchesReceived(borrower)
}

// ActiveVouchesForBorrower returns a copy-on-read snapshot of every
// currently active vouch backing borrower (§9: consumed in the same
// transaction by Lending.handle_default).
func (e *Engine) ActiveVouchesForBorrower(borrower types.Address) ([]*Vouch, error) {
	all, err := e.state.VouchesReceived(borrower)
	if err != nil {
		return nil, err
	}
	active := make([]*Vouch, 0, len(all))
	for _, v := range all {
		if v.Active {
			active = append(active, v)
		}
	}
	return active, nil
}
