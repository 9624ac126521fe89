package lending

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
	"github.com/GabinFay/uncle-credit-p2p-lending/native/reputation"
	"github.com/GabinFay/uncle-credit-p2p-lending/observability/metrics"
)

// ModuleName is the identifier passed to PauseView.IsPaused for this module.
const ModuleName = "lending"

// slashBpsOfStake is the 10% (1000/10000) fraction of a voucher's remaining
// stake seized on each defaulted loan (§6.4).
const slashBpsOfStake = 1000

// registryView is the narrow UserRegistry slice Lending depends on (§2).
type registryView interface {
	IsRegistered(addr Address) (bool, error)
}

// reputationHandle is the narrow slice of Reputation's sensitive mutators
// that only Lending may call (§9's "interface-handle pattern": the handle
// itself, not a string-keyed global, is what gates access). Lending
// authenticates itself to Reputation by passing its own configured address
// as caller on every call.
type reputationHandle interface {
	RecordLoanPaymentOutcome(caller types.Address, agreementID [32]byte, borrower, lender types.Address, principal *big.Int, outcome types.PaymentOutcome, modType types.ModificationType, lenderApproved bool) error
	RecordLoanDefault(caller types.Address, agreementID [32]byte, borrower, lender types.Address, principal *big.Int) error
	SlashVouchAndReputation(caller, voucher, defaultingBorrower types.Address, amountToSlash *big.Int, payee types.Address) error
	ActiveVouchesForBorrower(borrower types.Address) ([]*reputation.Vouch, error)
}

// Engine implements the Lending state machine of §4.3.
type Engine struct {
	state      state
	registry   registryView
	reputation reputationHandle
	tokens     token.Registry

	// address is Lending's own identity, presented as the caller on every
	// call into Reputation's authority-gated mutators. It must match the
	// lending_authority configured in the Reputation engine.
	address types.Address
	vault   types.Address

	offerNonce     uint64
	requestNonce   uint64

	pauses  nativecommon.PauseView
	emitter events.Emitter
	guard   nativecommon.ReentrancyGuard
	logger  *slog.Logger
	nowFn   func() int64
	metrics *metrics.LendingMetrics
}

// NewEngine constructs an Engine. address is the identity Lending presents
// to Reputation; vault is the custody address under which escrowed
// principal and collateral are held.
func NewEngine(st state, registry registryView, rep reputationHandle, tokens token.Registry, address, vault types.Address, pauses nativecommon.PauseView, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		state:      st,
		registry:   registry,
		reputation: rep,
		tokens:     tokens,
		address:    address,
		vault:      vault,
		emitter:    events.NoopEmitter{},
		pauses:     pauses,
		logger:     logger,
		nowFn:      func() int64 { return time.Now().Unix() },
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

// SetNowFunc overrides the clock; tests use this for deterministic due
// dates and outcome classification. Without an override the engine reads
// wall-clock Unix seconds (time.Now).
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	e.nowFn = now
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

func validateCollateralPair(amount *big.Int, collateralToken types.Address) error {
	hasAmount := amount != nil && amount.Sign() > 0
	hasToken := !collateralToken.IsZero()
	if hasAmount != hasToken {
		return fmt.Errorf("%w: required_collateral_amount>0 iff collateral_token is non-zero", coreerrors.ErrInvalidArgument)
	}
	return nil
}

// CreateOffer posts a standing offer to lend (§4.3). While active, Lending
// holds exactly amount of token in custody (pulled here).
func (e *Engine) CreateOffer(lender types.Address, amount *big.Int, tok types.Address, interestRateBps uint16, durationSeconds uint64, requiredCollateralAmount *big.Int, collateralToken types.Address) ([32]byte, error) {
	release, err := e.guard.Enter()
	if err != nil {
		return [32]byte{}, err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return [32]byte{}, err
	}
	if err := e.ensureRegistered(lender); err != nil {
		return [32]byte{}, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return [32]byte{}, fmt.Errorf("%w: amount must be positive", coreerrors.ErrInvalidArgument)
	}
	if tok.IsZero() {
		return [32]byte{}, fmt.Errorf("%w: token must not be the zero sentinel", coreerrors.ErrInvalidArgument)
	}
	if err := validateCollateralPair(requiredCollateralAmount, collateralToken); err != nil {
		return [32]byte{}, err
	}

	tokenImpl, err := e.tokens.Token(tok)
	if err != nil {
		return [32]byte{}, err
	}
	if err := tokenImpl.TransferFrom(e.vault, lender, e.vault, amount); err != nil {
		return [32]byte{}, err
	}

	e.offerNonce++
	id := deriveID("offer", lender, e.offerNonce)
	offer := &LoanOffer{
		ID:                       id,
		Lender:                   lender,
		Amount:                   new(big.Int).Set(amount),
		Token:                    tok,
		InterestRateBps:          interestRateBps,
		DurationSeconds:          durationSeconds,
		RequiredCollateralAmount: new(big.Int).Set(nz(requiredCollateralAmount)),
		CollateralToken:          collateralToken,
		Active:                   true,
	}
	if err := e.state.PutOffer(id, offer); err != nil {
		return [32]byte{}, err
	}

	e.emitter.Emit(events.LoanOfferCreated{OfferID: id, Lender: lender, Amount: new(big.Int).Set(amount), Token: tok, InterestRateBps: interestRateBps, DurationSeconds: durationSeconds})
	e.logger.Info("lending.createOffer", "offerId", fmt.Sprintf("%x", id), "lender", lender.String())
	return id, nil
}

// CreateRequest posts a standing request to borrow (§4.3). Collateral is
// not pre-escrowed; it is pulled only at FundRequest time.
func (e *Engine) CreateRequest(borrower types.Address, amount *big.Int, tok types.Address, proposedInterestRateBps uint16, proposedDurationSeconds uint64, offeredCollateralAmount *big.Int, collateralToken types.Address) ([32]byte, error) {
	release, err := e.guard.Enter()
	if err != nil {
		return [32]byte{}, err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return [32]byte{}, err
	}
	if err := e.ensureRegistered(borrower); err != nil {
		return [32]byte{}, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return [32]byte{}, fmt.Errorf("%w: amount must be positive", coreerrors.ErrInvalidArgument)
	}
	if tok.IsZero() {
		return [32]byte{}, fmt.Errorf("%w: token must not be the zero sentinel", coreerrors.ErrInvalidArgument)
	}
	if err := validateCollateralPair(offeredCollateralAmount, collateralToken); err != nil {
		return [32]byte{}, err
	}

	e.requestNonce++
	id := deriveID("request", borrower, e.requestNonce)
	request := &LoanRequest{
		ID:                      id,
		Borrower:                borrower,
		Amount:                  new(big.Int).Set(amount),
		Token:                   tok,
		ProposedInterestRateBps: proposedInterestRateBps,
		ProposedDurationSeconds: proposedDurationSeconds,
		OfferedCollateralAmount: new(big.Int).Set(nz(offeredCollateralAmount)),
		CollateralToken:         collateralToken,
		Active:                  true,
	}
	if err := e.state.PutRequest(id, request); err != nil {
		return [32]byte{}, err
	}

	e.emitter.Emit(events.LoanRequestCreated{RequestID: id, Borrower: borrower, Amount: new(big.Int).Set(amount), Token: tok, InterestRateBps: proposedInterestRateBps, DurationSeconds: proposedDurationSeconds})
	e.logger.Info("lending.createRequest", "requestId", fmt.Sprintf("%x", id), "borrower", borrower.String())
	return id, nil
}

// AcceptOffer lets a borrower accept a lender's standing offer, forming a
// LoanAgreement (§4.3).
func (e *Engine) AcceptOffer(borrower types.Address, offerID [32]byte) ([32]byte, error) {
	release, err := e.guard.Enter()
	if err != nil {
		return [32]byte{}, err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return [32]byte{}, err
	}
	if err := e.ensureRegistered(borrower); err != nil {
		return [32]byte{}, err
	}

	offer, ok, err := e.state.GetOffer(offerID)
	if err != nil {
		return [32]byte{}, err
	}
	if !ok {
		return [32]byte{}, fmt.Errorf("%w: offer %x", coreerrors.ErrNotFound, offerID)
	}
	if !offer.Active || offer.Fulfilled {
		return [32]byte{}, fmt.Errorf("%w: offer is not active", coreerrors.ErrDoubleSpend)
	}
	if offer.Lender == borrower {
		return [32]byte{}, fmt.Errorf("%w: lender cannot accept its own offer", coreerrors.ErrInvalidArgument)
	}

	if offer.RequiredCollateralAmount.Sign() > 0 {
		collateralTok, err := e.tokens.Token(offer.CollateralToken)
		if err != nil {
			return [32]byte{}, err
		}
		if err := collateralTok.TransferFrom(e.vault, borrower, e.vault, offer.RequiredCollateralAmount); err != nil {
			return [32]byte{}, err
		}
	}

	principalTok, err := e.tokens.Token(offer.Token)
	if err != nil {
		return [32]byte{}, err
	}
	if err := principalTok.Transfer(e.vault, borrower, offer.Amount); err != nil {
		return [32]byte{}, err
	}

	offer.Active = false
	offer.Fulfilled = true
	if err := e.state.PutOffer(offerID, offer); err != nil {
		return [32]byte{}, err
	}

	now := e.nowFn()
	agreementID := deriveAgreementID(offerID, borrower, now)
	agreement := &LoanAgreement{
		ID:               agreementID,
		OriginOfferID:    offerID,
		Lender:           offer.Lender,
		Borrower:         borrower,
		PrincipalAmount:  new(big.Int).Set(offer.Amount),
		LoanToken:        offer.Token,
		InterestRateBps:  offer.InterestRateBps,
		DurationSeconds:  offer.DurationSeconds,
		CollateralAmount: new(big.Int).Set(offer.RequiredCollateralAmount),
		CollateralToken:  offer.CollateralToken,
		StartTime:        now,
		DueDate:          now + int64(offer.DurationSeconds),
		AmountPaid:       big.NewInt(0),
		Status:           StatusActive,
	}
	if err := e.persistNewAgreement(agreement); err != nil {
		return [32]byte{}, err
	}

	e.emitAgreementCreated(agreement)
	e.metrics.IncLoanOriginated("offer")
	e.logger.Info("lending.acceptOffer", "agreementId", fmt.Sprintf("%x", agreementID), "offerId", fmt.Sprintf("%x", offerID))
	return agreementID, nil
}

// FundRequest lets a lender fund a borrower's standing request, forming a
// LoanAgreement (§4.3).
func (e *Engine) FundRequest(lender types.Address, requestID [32]byte) ([32]byte, error) {
	release, err := e.guard.Enter()
	if err != nil {
		return [32]byte{}, err
	}
	defer release()

	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return [32]byte{}, err
	}
	if err := e.ensureRegistered(lender); err != nil {
		return [32]byte{}, err
	}

	request, ok, err := e.state.GetRequest(requestID)
	if err != nil {
		return [32]byte{}, err
	}
	if !ok {
		return [32]byte{}, fmt.Errorf("%w: request %x", coreerrors.ErrNotFound, requestID)
	}
	if !request.Active || request.Fulfilled {
		return [32]byte{}, fmt.Errorf("%w: request is not active", coreerrors.ErrDoubleSpend)
	}
	if request.Borrower == lender {
		return [32]byte{}, fmt.Errorf("%w: borrower cannot fund its own request", coreerrors.ErrInvalidArgument)
	}

	if request.OfferedCollateralAmount.Sign() > 0 {
		collateralTok, err := e.tokens.Token(request.CollateralToken)
		if err != nil {
			return [32]byte{}, err
		}
		if err := collateralTok.TransferFrom(e.vault, request.Borrower, e.vault, request.OfferedCollateralAmount); err != nil {
			return [32]byte{}, err
		}
	}

	principalTok, err := e.tokens.Token(request.Token)
	if err != nil {
		return [32]byte{}, err
	}
	if err := principalTok.TransferFrom(e.vault, lender, request.Borrower, request.Amount); err != nil {
		return [32]byte{}, err
	}

	request.Active = false
	request.Fulfilled = true
	if err := e.state.PutRequest(requestID, request); err != nil {
		return [32]byte{}, err
	}

	now := e.nowFn()
	agreementID := deriveAgreementID(requestID, lender, now)
	agreement := &LoanAgreement{
		ID:               agreementID,
		OriginRequestID:  requestID,
		Lender:           lender,
		Borrower:         request.Borrower,
		PrincipalAmount:  new(big.Int).Set(request.Amount),
		LoanToken:        request.Token,
		InterestRateBps:  request.ProposedInterestRateBps,
		DurationSeconds:  request.ProposedDurationSeconds,
		CollateralAmount: new(big.Int).Set(request.OfferedCollateralAmount),
		CollateralToken:  request.CollateralToken,
		StartTime:        now,
		DueDate:          now + int64(request.ProposedDurationSeconds),
		AmountPaid:       big.NewInt(0),
		Status:           StatusActive,
	}
	if err := e.persistNewAgreement(agreement); err != nil {
		return [32]byte{}, err
	}

	e.emitAgreementCreated(agreement)
	e.metrics.IncLoanOriginated("request")
	e.logger.Info("lending.fundRequest", "agreementId", fmt.Sprintf("%x", agreementID), "requestId", fmt.Sprintf("%x", requestID))
	return agreementID, nil
}

func (e *Engine) persistNewAgreement(agreement *LoanAgreement) error {
	if err := e.state.PutAgreement(agreement.ID, agreement); err != nil {
		return err
	}
	if err := e.state.AppendLenderAgreement(agreement.Lender, agreement.ID); err != nil {
		return err
	}
	return e.state.AppendBorrowerAgreement(agreement.Borrower, agreement.ID)
}

func (e *Engine) emitAgreementCreated(a *LoanAgreement) {
	e.emitter.Emit(events.LoanAgreementCreated{
		AgreementID:      a.ID,
		Lender:           a.Lender,
		Borrower:         a.Borrower,
		PrincipalAmount:  new(big.Int).Set(a.PrincipalAmount),
		LoanToken:        a.LoanToken,
		CollateralAmount: new(big.Int).Set(a.CollateralAmount),
		CollateralToken:  a.CollateralToken,
		DueDate:          a.DueDate,
	})
}

// Offer returns a defensive copy of the offer, or ok=false if unset.
func (e *Engine) Offer(id [32]byte) (*LoanOffer, bool, error) { return e.state.GetOffer(id) }

// Request returns a defensive copy of the request, or ok=false if unset.
func (e *Engine) Request(id [32]byte) (*LoanRequest, bool, error) { return e.state.GetRequest(id) }

// Agreement returns a defensive copy of the agreement, or ok=false if unset.
func (e *Engine) Agreement(id [32]byte) (*LoanAgreement, bool, error) { return e.state.GetAgreement(id) }

// LenderAgreements lists every agreement id in which addr is the lender.
func (e *Engine) LenderAgreements(addr types.Address) ([][32]byte, error) {
	return e.state.LenderAgreements(addr)
}

// BorrowerAgreements lists every agreement id in which addr is the
// borrower.
func (e *Engine) BorrowerAgreements(addr types.Address) ([][32]byte, error) {
	return e.state.BorrowerAgreements(addr)
}
