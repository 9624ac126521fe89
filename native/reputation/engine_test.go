package reputation

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	coreerrors "github.com/GabinFay/uncle-credit-p2p-lending/core/errors"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/events"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/token"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

func addr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

type fakeRegistry struct{ registered map[types.Address]bool }

func (f *fakeRegistry) IsRegistered(a types.Address) (bool, error) { return f.registered[a], nil }

func newTestEngine(t *testing.T, registered ...types.Address) (*Engine, *events.Recorder, *token.MemToken, types.Address) {
	t.Helper()
	reg := &fakeRegistry{registered: map[types.Address]bool{}}
	for _, a := range registered {
		reg.registered[a] = true
	}
	tok := token.NewMemToken()
	dir := token.NewDirectory()
	tokenID := addr(99)
	dir.Register(tokenID, tok)

	owner := addr(250)
	vault := addr(254)
	authority := addr(253)
	e := NewEngine(NewMemoryState(), reg, dir, owner, vault, nil, nil)
	require.NoError(t, e.SetLendingAuthority(owner, authority))
	rec := &events.Recorder{}
	e.SetEmitter(rec)
	return e, rec, tok, tokenID
}

func TestAddVouchAndRemoveVouch(t *testing.T) {
	voucher, borrower := addr(1), addr(2)
	e, rec, tok, tokenID := newTestEngine(t, voucher, borrower)

	tok.Mint(voucher, big.NewInt(100))
	require.NoError(t, tok.Approve(voucher, e.vault, big.NewInt(100)))

	require.NoError(t, e.AddVouch(voucher, borrower, big.NewInt(50), tokenID))

	v, ok, err := e.VouchDetails(voucher, borrower)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, v.Active)
	require.Equal(t, big.NewInt(50), v.StakedAmount)

	bal, _ := tok.BalanceOf(e.vault)
	require.Equal(t, big.NewInt(50), bal)

	require.NoError(t, e.RemoveVouch(voucher, borrower))
	v, ok, err = e.VouchDetails(voucher, borrower)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, v.Active)

	bal, _ = tok.BalanceOf(voucher)
	require.Equal(t, big.NewInt(100), bal)

	require.Equal(t, []string{events.TypeVouchAdded, events.TypeVouchRemoved}, rec.Types())
}

func TestAddVouchRejectsDoubleActive(t *testing.T) {
	voucher, borrower := addr(1), addr(2)
	e, _, tok, tokenID := newTestEngine(t, voucher, borrower)
	tok.Mint(voucher, big.NewInt(100))
	require.NoError(t, tok.Approve(voucher, e.vault, big.NewInt(100)))
	require.NoError(t, e.AddVouch(voucher, borrower, big.NewInt(10), tokenID))

	err := e.AddVouch(voucher, borrower, big.NewInt(10), tokenID)
	require.True(t, errors.Is(err, coreerrors.ErrDoubleSpend))
}

func TestSlashVouchAndReputation(t *testing.T) {
	voucher, borrower, lender := addr(1), addr(2), addr(3)
	e, rec, tok, tokenID := newTestEngine(t, voucher, borrower, lender)
	tok.Mint(voucher, big.NewInt(100))
	require.NoError(t, tok.Approve(voucher, e.vault, big.NewInt(100)))
	require.NoError(t, e.AddVouch(voucher, borrower, big.NewInt(50), tokenID))

	require.NoError(t, e.SlashVouchAndReputation(e.lendingAuthority, voucher, borrower, big.NewInt(5), lender))

	v, _, err := e.VouchDetails(voucher, borrower)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(45), v.StakedAmount)
	require.True(t, v.Active)

	profile, _, err := e.Profile(voucher)
	require.NoError(t, err)
	require.Equal(t, VouchDefaultedVoucher, profile.CurrentScore)
	require.Equal(t, uint64(1), profile.TimesDefaultedAsVoucher)

	lenderBal, _ := tok.BalanceOf(lender)
	require.Equal(t, big.NewInt(5), lenderBal)

	require.Equal(t, []string{events.TypeVouchSlashed, events.TypeReputationUpdated}, rec.Types())
}

func TestSlashRequiresAuthority(t *testing.T) {
	voucher, borrower := addr(1), addr(2)
	e, _, tok, tokenID := newTestEngine(t, voucher, borrower)
	tok.Mint(voucher, big.NewInt(100))
	require.NoError(t, tok.Approve(voucher, e.vault, big.NewInt(100)))
	require.NoError(t, e.AddVouch(voucher, borrower, big.NewInt(50), tokenID))

	err := e.SlashVouchAndReputation(addr(111), voucher, borrower, big.NewInt(5), addr(3))
	require.True(t, errors.Is(err, coreerrors.ErrUnauthorized))
}

func TestRecordLoanPaymentOutcomeRequiresAuthority(t *testing.T) {
	borrower, lender := addr(1), addr(2)
	e, _, _, _ := newTestEngine(t, borrower, lender)
	var agreementID [32]byte
	agreementID[0] = 7

	err := e.RecordLoanPaymentOutcome(addr(111), agreementID, borrower, lender, big.NewInt(100), types.OutcomeOnTimeOriginal, types.ModificationNone, false)
	require.True(t, errors.Is(err, coreerrors.ErrUnauthorized))
}

func TestRecordLoanDefaultRequiresAuthority(t *testing.T) {
	borrower, lender := addr(1), addr(2)
	e, _, _, _ := newTestEngine(t, borrower, lender)
	var agreementID [32]byte
	agreementID[0] = 7

	err := e.RecordLoanDefault(addr(111), agreementID, borrower, lender, big.NewInt(100))
	require.True(t, errors.Is(err, coreerrors.ErrUnauthorized))
}

func TestRecordLoanPaymentOutcomeOnTimeOriginal(t *testing.T) {
	borrower, lender := addr(1), addr(2)
	e, rec, _, _ := newTestEngine(t, borrower, lender)
	var agreementID [32]byte
	agreementID[0] = 7

	require.NoError(t, e.RecordLoanPaymentOutcome(e.lendingAuthority, agreementID, borrower, lender, big.NewInt(100), types.OutcomeOnTimeOriginal, types.ModificationNone, false))

	bp, _, _ := e.Profile(borrower)
	require.Equal(t, RepaidOnTimeOriginal, bp.CurrentScore)
	require.Equal(t, uint64(1), bp.LoansRepaidOnTime)

	lp, _, _ := e.Profile(lender)
	require.Equal(t, LentSuccessfullyOnTimeOriginal, lp.CurrentScore)

	require.Equal(t, []string{
		events.TypeReputationUpdated, events.TypeLoanTermOutcomeRecorded,
		events.TypeReputationUpdated, events.TypeLoanTermOutcomeRecorded,
	}, rec.Types())
}

func TestRecordLoanPaymentOutcomeApprovedExtension(t *testing.T) {
	borrower, lender := addr(1), addr(2)
	e, _, _, _ := newTestEngine(t, borrower, lender)
	var agreementID [32]byte

	require.NoError(t, e.RecordLoanPaymentOutcome(e.lendingAuthority, agreementID, borrower, lender, big.NewInt(100), types.OutcomeOnTimeExtended, types.ModificationDueDateExtension, true))

	bp, _, _ := e.Profile(borrower)
	require.Equal(t, RepaidOnTimeAfterExtension, bp.CurrentScore)

	lp, _, _ := e.Profile(lender)
	require.Equal(t, LentSuccessfullyAfterModification+LenderApprovedExtension, lp.CurrentScore)
	require.Equal(t, uint64(1), lp.ModificationsApprovedByLender)
}

func TestRecordLoanDefault(t *testing.T) {
	borrower, lender := addr(1), addr(2)
	e, rec, _, _ := newTestEngine(t, borrower, lender)
	var agreementID [32]byte

	require.NoError(t, e.RecordLoanDefault(e.lendingAuthority, agreementID, borrower, lender, big.NewInt(100)))

	bp, _, _ := e.Profile(borrower)
	require.Equal(t, Defaulted, bp.CurrentScore)
	require.Equal(t, uint64(1), bp.LoansDefaulted)
	require.Equal(t, []string{events.TypeReputationUpdated}, rec.Types())
}
