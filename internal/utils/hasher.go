package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex-encoded SHA-256 of the input string.
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 16 hex characters of Hash, enough for
// collision-safe object-storage key prefixes.
func ShortHash(input string) string {
	return Hash(input)[:16]
}
