package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

func parseAddr(s string) (types.Address, error) {
	addr, err := types.ParseAddress(s)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return addr, nil
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer amount %q", s)
	}
	return amount, nil
}

func parseID(s string) ([32]byte, error) {
	var id [32]byte
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return id, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if len(b) != 32 {
		return id, fmt.Errorf("id %q must decode to 32 bytes, got %d", s, len(b))
	}
	copy(id[:], b)
	return id, nil
}
