package lending

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/token"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
	"github.com/GabinFay/uncle-credit-p2p-lending/native/reputation"
	registrypkg "github.com/GabinFay/uncle-credit-p2p-lending/native/registry"
)

func addr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

const daySeconds = 24 * 60 * 60

// harness wires a real registry.Engine and reputation.Engine (not fakes) so
// these tests exercise the full cross-module call chain Lending -> Reputation
// described in §2.
type harness struct {
	registry   *registrypkg.Engine
	reputation *reputation.Engine
	lending    *Engine
	tok        *token.MemToken
	tokenID    types.Address
	collTok    *token.MemToken
	collTokID  types.Address
	lendingAddr types.Address
	clock      int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	reg := registrypkg.NewEngine(registrypkg.NewMemoryState(), nil, nil)

	dir := token.NewDirectory()
	tok := token.NewMemToken()
	tokenID := addr(90)
	dir.Register(tokenID, tok)
	collTok := token.NewMemToken()
	collTokID := addr(91)
	dir.Register(collTokID, collTok)

	owner := addr(200)
	vault := addr(201)
	lendingAddr := addr(202)
	rep := reputation.NewEngine(reputation.NewMemoryState(), reg, dir, owner, vault, nil, nil)
	require.NoError(t, rep.SetLendingAuthority(owner, lendingAddr))

	h := &harness{
		registry:    reg,
		reputation:  rep,
		tok:         tok,
		tokenID:     tokenID,
		collTok:     collTok,
		collTokID:   collTokID,
		lendingAddr: lendingAddr,
		clock:       1_000_000,
	}
	lendingVault := addr(203)
	h.lending = NewEngine(NewMemoryState(), reg, rep, dir, lendingAddr, lendingVault, nil, nil)

	now := func() int64 { return h.clock }
	reg.SetNowFunc(now)
	rep.SetNowFunc(now)
	h.lending.SetNowFunc(now)
	return h
}

func (h *harness) register(t *testing.T, a types.Address, name string) {
	t.Helper()
	require.NoError(t, h.registry.Register(a, name))
}

func TestScenarioS1_OnTimeFullRepaymentNoCollateral(t *testing.T) {
	h := newHarness(t)
	lender, borrower := addr(1), addr(2)
	h.register(t, lender, "lender")
	h.register(t, borrower, "borrower")

	h.tok.Mint(lender, big.NewInt(100))
	require.NoError(t, h.tok.Approve(lender, addr(203), big.NewInt(100)))

	offerID, err := h.lending.CreateOffer(lender, big.NewInt(100), h.tokenID, 1000, 7*daySeconds, big.NewInt(0), types.Address{})
	require.NoError(t, err)

	agreementID, err := h.lending.AcceptOffer(borrower, offerID)
	require.NoError(t, err)

	h.tok.Mint(borrower, big.NewInt(10))
	require.NoError(t, h.tok.Approve(borrower, addr(203), big.NewInt(110)))

	h.clock += 6 * daySeconds
	require.NoError(t, h.lending.Repay(borrower, agreementID, big.NewInt(110)))

	agreement, _, err := h.lending.Agreement(agreementID)
	require.NoError(t, err)
	require.Equal(t, StatusRepaid, agreement.Status)

	bp, _, err := h.reputation.Profile(borrower)
	require.NoError(t, err)
	require.Equal(t, reputation.RepaidOnTimeOriginal, bp.CurrentScore)

	lp, _, err := h.reputation.Profile(lender)
	require.NoError(t, err)
	require.Equal(t, reputation.LentSuccessfullyOnTimeOriginal, lp.CurrentScore)
}

func TestScenarioS2_LateRepaymentNoModificationGetsGrace(t *testing.T) {
	h := newHarness(t)
	lender, borrower := addr(1), addr(2)
	h.register(t, lender, "lender")
	h.register(t, borrower, "borrower")

	h.tok.Mint(lender, big.NewInt(100))
	require.NoError(t, h.tok.Approve(lender, addr(203), big.NewInt(100)))
	offerID, err := h.lending.CreateOffer(lender, big.NewInt(100), h.tokenID, 1000, 7*daySeconds, big.NewInt(0), types.Address{})
	require.NoError(t, err)
	agreementID, err := h.lending.AcceptOffer(borrower, offerID)
	require.NoError(t, err)

	h.tok.Mint(borrower, big.NewInt(10))
	require.NoError(t, h.tok.Approve(borrower, addr(203), big.NewInt(110)))

	// Past the due date with no extension or partial-payment agreement in
	// effect, a full repayment still settles, classified as late grace.
	h.clock += 9 * daySeconds
	require.NoError(t, h.lending.Repay(borrower, agreementID, big.NewInt(110)))

	agreement, _, err := h.lending.Agreement(agreementID)
	require.NoError(t, err)
	require.Equal(t, StatusRepaid, agreement.Status)

	bp, _, err := h.reputation.Profile(borrower)
	require.NoError(t, err)
	require.Equal(t, reputation.RepaidLateGrace, bp.CurrentScore)
	require.Equal(t, uint64(1), bp.LoansRepaidLateGrace)

	lp, _, err := h.reputation.Profile(lender)
	require.NoError(t, err)
	require.Equal(t, reputation.LentSuccessfullyAfterModification, lp.CurrentScore)
}

func TestScenarioS3_ApprovedDueDateExtension(t *testing.T) {
	h := newHarness(t)
	lender, borrower := addr(1), addr(2)
	h.register(t, lender, "lender")
	h.register(t, borrower, "borrower")

	h.tok.Mint(lender, big.NewInt(100))
	require.NoError(t, h.tok.Approve(lender, addr(203), big.NewInt(100)))
	offerID, err := h.lending.CreateOffer(lender, big.NewInt(100), h.tokenID, 1000, 7*daySeconds, big.NewInt(0), types.Address{})
	require.NoError(t, err)
	agreementID, err := h.lending.AcceptOffer(borrower, offerID)
	require.NoError(t, err)

	originalDue := h.clock + 7*daySeconds
	newDueDate := originalDue + 5*daySeconds

	h.clock += 6 * daySeconds
	require.NoError(t, h.lending.RequestModification(borrower, agreementID, types.ModificationDueDateExtension, newDueDate))
	require.NoError(t, h.lending.RespondToModification(lender, agreementID, true))

	agreement, _, err := h.lending.Agreement(agreementID)
	require.NoError(t, err)
	require.Equal(t, StatusActive, agreement.Status)
	require.Equal(t, newDueDate, agreement.DueDate)

	h.tok.Mint(borrower, big.NewInt(10))
	require.NoError(t, h.tok.Approve(borrower, addr(203), big.NewInt(110)))
	h.clock += 3 * daySeconds
	require.NoError(t, h.lending.Repay(borrower, agreementID, big.NewInt(110)))

	bp, _, err := h.reputation.Profile(borrower)
	require.NoError(t, err)
	require.Equal(t, reputation.RepaidOnTimeAfterExtension, bp.CurrentScore)

	lp, _, err := h.reputation.Profile(lender)
	require.NoError(t, err)
	require.Equal(t, reputation.LentSuccessfullyAfterModification+reputation.LenderApprovedExtension, lp.CurrentScore)
	require.Equal(t, uint64(1), lp.ModificationsApprovedByLender)
}

func TestScenarioS4_DefaultWithCollateralAndVouch(t *testing.T) {
	h := newHarness(t)
	lender, borrower, voucher := addr(1), addr(2), addr(3)
	h.register(t, lender, "lender")
	h.register(t, borrower, "borrower")
	h.register(t, voucher, "voucher")

	require.NoError(t, h.reputation.SetLendingAuthority(addr(200), h.lendingAddr))

	h.tok.Mint(voucher, big.NewInt(50))
	require.NoError(t, h.tok.Approve(voucher, addr(201), big.NewInt(50)))
	require.NoError(t, h.reputation.AddVouch(voucher, borrower, big.NewInt(50), h.tokenID))

	h.tok.Mint(lender, big.NewInt(100))
	require.NoError(t, h.tok.Approve(lender, addr(203), big.NewInt(100)))
	offerID, err := h.lending.CreateOffer(lender, big.NewInt(100), h.tokenID, 1000, 7*daySeconds, big.NewInt(50), h.collTokID)
	require.NoError(t, err)

	h.collTok.Mint(borrower, big.NewInt(50))
	require.NoError(t, h.collTok.Approve(borrower, addr(203), big.NewInt(50)))

	agreementID, err := h.lending.AcceptOffer(borrower, offerID)
	require.NoError(t, err)

	h.clock += 8 * daySeconds
	require.NoError(t, h.lending.HandleDefault(addr(9), agreementID))

	agreement, _, err := h.lending.Agreement(agreementID)
	require.NoError(t, err)
	require.Equal(t, StatusDefaulted, agreement.Status)

	lenderCollBal, err := h.collTok.BalanceOf(lender)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(50), lenderCollBal)

	vp, _, err := h.reputation.Profile(voucher)
	require.NoError(t, err)
	require.Equal(t, reputation.VouchDefaultedVoucher, vp.CurrentScore)

	v, _, err := h.reputation.VouchDetails(voucher, borrower)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(45), v.StakedAmount)

	lenderTokenBal, err := h.tok.BalanceOf(lender)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(5), lenderTokenBal)

	bp, _, err := h.reputation.Profile(borrower)
	require.NoError(t, err)
	require.Equal(t, reputation.Defaulted, bp.CurrentScore)
}

func TestScenarioS5_PartialPaymentAgreementMetThenRepaid(t *testing.T) {
	h := newHarness(t)
	lender, borrower := addr(1), addr(2)
	h.register(t, lender, "lender")
	h.register(t, borrower, "borrower")

	h.tok.Mint(lender, big.NewInt(100))
	require.NoError(t, h.tok.Approve(lender, addr(203), big.NewInt(100)))
	offerID, err := h.lending.CreateOffer(lender, big.NewInt(100), h.tokenID, 1000, 7*daySeconds, big.NewInt(0), types.Address{})
	require.NoError(t, err)
	agreementID, err := h.lending.AcceptOffer(borrower, offerID)
	require.NoError(t, err)

	h.clock += 2 * daySeconds
	require.NoError(t, h.lending.RequestModification(borrower, agreementID, types.ModificationPartialPaymentAgreement, 40))
	require.NoError(t, h.lending.RespondToModification(lender, agreementID, true))

	agreement, _, err := h.lending.Agreement(agreementID)
	require.NoError(t, err)
	require.Equal(t, StatusActivePartialPaymentAgreed, agreement.Status)

	h.tok.Mint(borrower, big.NewInt(70))
	require.NoError(t, h.tok.Approve(borrower, addr(203), big.NewInt(110)))

	require.NoError(t, h.lending.Repay(borrower, agreementID, big.NewInt(40)))
	agreement, _, err = h.lending.Agreement(agreementID)
	require.NoError(t, err)
	require.Equal(t, StatusActive, agreement.Status)

	require.NoError(t, h.lending.Repay(borrower, agreementID, big.NewInt(70)))
	agreement, _, err = h.lending.Agreement(agreementID)
	require.NoError(t, err)
	require.Equal(t, StatusRepaid, agreement.Status)

	bp, _, err := h.reputation.Profile(borrower)
	require.NoError(t, err)
	require.Equal(t, reputation.RepaidWithPartialAgreementMet, bp.CurrentScore)

	lp, _, err := h.reputation.Profile(lender)
	require.NoError(t, err)
	require.Equal(t, reputation.LentSuccessfullyAfterModification+reputation.LenderApprovedPartialAgreement, lp.CurrentScore)
}

func TestScenarioS6_RejectedModificationKeepsOriginalTerms(t *testing.T) {
	h := newHarness(t)
	lender, borrower := addr(1), addr(2)
	h.register(t, lender, "lender")
	h.register(t, borrower, "borrower")

	h.tok.Mint(lender, big.NewInt(100))
	require.NoError(t, h.tok.Approve(lender, addr(203), big.NewInt(100)))
	offerID, err := h.lending.CreateOffer(lender, big.NewInt(100), h.tokenID, 1000, 7*daySeconds, big.NewInt(0), types.Address{})
	require.NoError(t, err)
	agreementID, err := h.lending.AcceptOffer(borrower, offerID)
	require.NoError(t, err)

	originalDue := h.clock + 7*daySeconds

	require.NoError(t, h.lending.RequestModification(borrower, agreementID, types.ModificationDueDateExtension, originalDue+5*daySeconds))
	require.NoError(t, h.lending.RespondToModification(lender, agreementID, false))

	agreement, _, err := h.lending.Agreement(agreementID)
	require.NoError(t, err)
	require.Equal(t, StatusActive, agreement.Status)
	require.Equal(t, originalDue, agreement.DueDate)

	h.tok.Mint(borrower, big.NewInt(10))
	require.NoError(t, h.tok.Approve(borrower, addr(203), big.NewInt(110)))
	require.NoError(t, h.lending.Repay(borrower, agreementID, big.NewInt(110)))

	bp, _, err := h.reputation.Profile(borrower)
	require.NoError(t, err)
	require.Equal(t, reputation.RepaidOnTimeOriginal, bp.CurrentScore)
}

func TestRepayRejectsOverpayment(t *testing.T) {
	h := newHarness(t)
	lender, borrower := addr(1), addr(2)
	h.register(t, lender, "lender")
	h.register(t, borrower, "borrower")

	h.tok.Mint(lender, big.NewInt(100))
	require.NoError(t, h.tok.Approve(lender, addr(203), big.NewInt(100)))
	offerID, err := h.lending.CreateOffer(lender, big.NewInt(100), h.tokenID, 1000, 7*daySeconds, big.NewInt(0), types.Address{})
	require.NoError(t, err)
	agreementID, err := h.lending.AcceptOffer(borrower, offerID)
	require.NoError(t, err)

	h.tok.Mint(borrower, big.NewInt(200))
	require.NoError(t, h.tok.Approve(borrower, addr(203), big.NewInt(200)))
	err = h.lending.Repay(borrower, agreementID, big.NewInt(111))
	require.Error(t, err)
}

func TestRepayAfterRepaidIsIllegal(t *testing.T) {
	h := newHarness(t)
	lender, borrower := addr(1), addr(2)
	h.register(t, lender, "lender")
	h.register(t, borrower, "borrower")

	h.tok.Mint(lender, big.NewInt(100))
	require.NoError(t, h.tok.Approve(lender, addr(203), big.NewInt(100)))
	offerID, err := h.lending.CreateOffer(lender, big.NewInt(100), h.tokenID, 1000, 7*daySeconds, big.NewInt(0), types.Address{})
	require.NoError(t, err)
	agreementID, err := h.lending.AcceptOffer(borrower, offerID)
	require.NoError(t, err)

	h.tok.Mint(borrower, big.NewInt(10))
	require.NoError(t, h.tok.Approve(borrower, addr(203), big.NewInt(110)))
	require.NoError(t, h.lending.Repay(borrower, agreementID, big.NewInt(110)))

	err = h.lending.Repay(borrower, agreementID, big.NewInt(1))
	require.Error(t, err)
}
