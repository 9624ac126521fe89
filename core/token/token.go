// Package token renders the fungible-token collaborator contract from §6.1:
// a pull-transfer, balance-query, allowance interface that the core modules
// treat as an external dependency. Go has no implicit msg.sender, so the
// pull/push methods take the acting address explicitly.
package token

import (
	"math/big"

	coreerrors "github.com/GabinFay/uncle-credit-p2p-lending/core/errors"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

// Token is the minimal fungible-token surface the core consumes. All
// monetary movement in the registry/reputation/lending engines is expressed
// as a Transfer (push from the module's own custody) or a TransferFrom (pull
// from a counterparty via allowance) against this interface.
type Token interface {
	// TransferFrom pulls amount from owner's balance into to's balance,
	// authorized by owner's allowance previously granted to spender. It
	// fails with ErrInsufficientAllowance or ErrInsufficientBalance.
	TransferFrom(spender, owner, to types.Address, amount *big.Int) error
	// Transfer pushes amount directly from from's balance into to's
	// balance. Callers use this to move value the calling module already
	// holds in custody (its own balance under this token).
	Transfer(from, to types.Address, amount *big.Int) error
	// BalanceOf returns owner's current balance.
	BalanceOf(owner types.Address) (*big.Int, error)
	// Allowance returns the amount owner has approved spender to pull.
	Allowance(owner, spender types.Address) (*big.Int, error)
	// Approve sets the amount spender may pull from owner via TransferFrom.
	Approve(owner, spender types.Address, amount *big.Int) error
}

// Registry resolves a token identifier (a types.Address) to its Token
// collaborator. The zero address is never a valid lookup key; callers reject
// it before consulting the registry wherever the zero address does not mean
// "no token".
type Registry interface {
	Token(id types.Address) (Token, error)
}

// ErrUnknownToken is returned by a Registry when no collaborator is wired for
// the requested token id.
var ErrUnknownToken = coreerrors.ErrNotFound
