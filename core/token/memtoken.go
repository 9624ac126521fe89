package token

import (
	"math/big"
	"sync"

	coreerrors "github.com/GabinFay/uncle-credit-p2p-lending/core/errors"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

// MemToken is an in-process reference implementation of Token, used by unit
// tests and the CLI demo in place of a real deployed fungible token.
type MemToken struct {
	mu         sync.Mutex
	balances   map[types.Address]*big.Int
	allowances map[types.Address]map[types.Address]*big.Int
}

// NewMemToken constructs an empty in-memory token ledger.
func NewMemToken() *MemToken {
	return &MemToken{
		balances:   make(map[types.Address]*big.Int),
		allowances: make(map[types.Address]map[types.Address]*big.Int),
	}
}

// Mint credits amount to addr's balance. Test/demo-only convenience; no real
// token exposes this on the Token interface.
func (m *MemToken) Mint(addr types.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal := m.balanceLocked(addr)
	m.balances[addr] = new(big.Int).Add(bal, amount)
}

func (m *MemToken) balanceLocked(addr types.Address) *big.Int {
	bal, ok := m.balances[addr]
	if !ok || bal == nil {
		return big.NewInt(0)
	}
	return bal
}

// BalanceOf implements Token.
func (m *MemToken) BalanceOf(owner types.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.balanceLocked(owner)), nil
}

// Approve implements Token.
func (m *MemToken) Approve(owner, spender types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return coreerrors.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.allowances[owner]; !ok {
		m.allowances[owner] = make(map[types.Address]*big.Int)
	}
	m.allowances[owner][spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance implements Token.
func (m *MemToken) Allowance(owner, spender types.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byOwner, ok := m.allowances[owner]
	if !ok {
		return big.NewInt(0), nil
	}
	allowed, ok := byOwner[spender]
	if !ok || allowed == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(allowed), nil
}

// Transfer implements Token.
func (m *MemToken) Transfer(from, to types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return coreerrors.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fromBal := m.balanceLocked(from)
	if fromBal.Cmp(amount) < 0 {
		return coreerrors.ErrInsufficientBalance
	}
	m.balances[from] = new(big.Int).Sub(fromBal, amount)
	m.balances[to] = new(big.Int).Add(m.balanceLocked(to), amount)
	return nil
}

// TransferFrom implements Token.
func (m *MemToken) TransferFrom(spender, owner, to types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return coreerrors.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ownerBal := m.balanceLocked(owner)
	if ownerBal.Cmp(amount) < 0 {
		return coreerrors.ErrInsufficientBalance
	}
	byOwner, ok := m.allowances[owner]
	if !ok {
		return coreerrors.ErrInsufficientAllowance
	}
	allowed, ok := byOwner[spender]
	if !ok || allowed.Cmp(amount) < 0 {
		return coreerrors.ErrInsufficientAllowance
	}

	m.balances[owner] = new(big.Int).Sub(ownerBal, amount)
	m.balances[to] = new(big.Int).Add(m.balanceLocked(to), amount)
	byOwner[spender] = new(big.Int).Sub(allowed, amount)
	return nil
}

// Directory is a simple Registry implementation over a fixed map of token id
// to Token, used by tests and the CLI demo to wire multiple MemToken
// instances (principal token, collateral token, vouch stake token, ...).
type Directory struct {
	mu     sync.RWMutex
	tokens map[types.Address]Token
}

// NewDirectory constructs an empty token directory.
func NewDirectory() *Directory {
	return &Directory{tokens: make(map[types.Address]Token)}
}

// Register wires id to the given Token collaborator.
func (d *Directory) Register(id types.Address, t Token) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens[id] = t
}

// Token implements Registry.
func (d *Directory) Token(id types.Address) (Token, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tokens[id]
	if !ok {
		return nil, ErrUnknownToken
	}
	return t, nil
}
