package types

import (
	"encoding/hex"
	"errors"
	"strings"
)

// AddressLength is the fixed width of an account or token identifier.
const AddressLength = 20

// Address is an opaque 20-byte account or token identifier. The zero value is
// reserved as the "no token" sentinel where a field permits one.
type Address [AddressLength]byte

// ErrInvalidAddressLength is returned when decoding a byte slice that is not
// exactly AddressLength bytes long.
var ErrInvalidAddressLength = errors.New("types: address must be 20 bytes")

// AddressFromBytes copies b into a new Address, rejecting any length other
// than AddressLength.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, ErrInvalidAddressLength
	}
	copy(a[:], b)
	return a, nil
}

// BytesToAddress is a panicking convenience wrapper around AddressFromBytes
// for call sites (tests, seed loaders) that already know the input is valid.
func BytesToAddress(b []byte) Address {
	addr, err := AddressFromBytes(b)
	if err != nil {
		panic(err)
	}
	return addr
}

// ParseAddress decodes a 0x-prefixed (or bare) hex string into an Address,
// used by config and seed-file loading where addresses arrive as text.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		var a Address
		return a, err
	}
	return AddressFromBytes(b)
}

// Bytes returns a defensive copy of the address's underlying bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether the address is the zero sentinel.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String renders the address as a 0x-prefixed hex string.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}
