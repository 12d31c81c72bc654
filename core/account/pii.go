package account

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const maskRune = "*"

// Mask redacts a sensitive identifier for display: first 2 and last 2
// characters stay visible, everything in between is masked. Identifiers of 4
// characters or fewer are masked entirely. Length is always preserved.
func Mask(raw string) string {
	n := len(raw)
	if n <= 4 {
		return strings.Repeat(maskRune, n)
	}
	return raw[:2] + strings.Repeat(maskRune, n-4) + raw[n-2:]
}

// HashIdentifier returns the stable one-way hex digest of a raw identifier.
// It feeds the uniqueness index only; it is never displayed and never
// reversible back to the raw value.
func HashIdentifier(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
