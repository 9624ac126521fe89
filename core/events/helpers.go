package events

import "encoding/hex"

func hexID(id [32]byte) string {
	return hex.EncodeToString(id[:])
}
