package lending

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// deriveID hashes kind||creator||nonce into a deterministic 32-byte
// identifier, grounded on the teacher's DeriveAliasID
// (core/identity/alias.go), which uses the same Keccak256-over-normalized-
// bytes approach for collision-resistant ids (§9: "any collision-resistant
// hash acceptable for ids").
func deriveID(kind string, creator Address, nonce uint64) [32]byte {
	buf := make([]byte, 0, len(kind)+len(creator)+8)
	buf = append(buf, []byte(kind)...)
	buf = append(buf, creator[:]...)
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	buf = append(buf, nonceBytes[:]...)
	hash := ethcrypto.Keccak256(buf)
	var id [32]byte
	copy(id[:], hash)
	return id
}

// deriveAgreementID derives a LoanAgreement id from its origin id,
// counterparty, and start time (§3.6).
func deriveAgreementID(originID [32]byte, counterparty Address, startTime int64) [32]byte {
	buf := make([]byte, 0, 32+len(counterparty)+8)
	buf = append(buf, originID[:]...)
	buf = append(buf, counterparty[:]...)
	var startBytes [8]byte
	binary.BigEndian.PutUint64(startBytes[:], uint64(startTime))
	buf = append(buf, startBytes[:]...)
	hash := ethcrypto.Keccak256(buf)
	var id [32]byte
	copy(id[:], hash)
	return id
}
