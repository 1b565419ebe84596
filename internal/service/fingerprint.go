package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the pool partition key from strategy text.
// It is unsalted so keys stay stable across restarts and instances.
func Fingerprint(strategy string) string {
	sum := sha256.Sum256([]byte(strategy))
	return hex.EncodeToString(sum[:])
}
