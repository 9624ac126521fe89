package token

import (
	"fmt"
	"math/big"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
	"github.com/GabinFay/uncle-credit-p2p-lending/storage/kv"
)

type allowanceEntry struct {
	Owner   types.Address
	Spender types.Address
	Amount  *big.Int
}

type memTokenSnapshot struct {
	Balances   map[types.Address]*big.Int
	Allowances []allowanceEntry
}

// Snapshot persists every balance and allowance under the given token id's
// key namespace, so a multi-token CLI demo can restore exact balances across
// restarts.
func (m *MemToken) Snapshot(store kv.Store, tokenID types.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := memTokenSnapshot{Balances: make(map[types.Address]*big.Int, len(m.balances))}
	for addr, bal := range m.balances {
		data.Balances[addr] = bal
	}
	for owner, bySpender := range m.allowances {
		for spender, amount := range bySpender {
			data.Allowances = append(data.Allowances, allowanceEntry{Owner: owner, Spender: spender, Amount: amount})
		}
	}
	return store.Put(tokenSnapshotKey(tokenID), data)
}

// Restore loads a previously Snapshot-ed token ledger from store.
func (m *MemToken) Restore(store kv.Store, tokenID types.Address) (bool, error) {
	var data memTokenSnapshot
	ok, err := store.Get(tokenSnapshotKey(tokenID), &data)
	if err != nil || !ok {
		return ok, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances = data.Balances
	if m.balances == nil {
		m.balances = make(map[types.Address]*big.Int)
	}
	m.allowances = make(map[types.Address]map[types.Address]*big.Int)
	for _, entry := range data.Allowances {
		if _, ok := m.allowances[entry.Owner]; !ok {
			m.allowances[entry.Owner] = make(map[types.Address]*big.Int)
		}
		m.allowances[entry.Owner][entry.Spender] = entry.Amount
	}
	return true, nil
}

func tokenSnapshotKey(tokenID types.Address) []byte {
	return []byte(fmt.Sprintf("token/v1/%s", tokenID.String()))
}
