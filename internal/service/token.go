package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// generateShortCode derives a short code from an original URL by hashing its
// UTF-8 bytes with SHA-256 and taking a fixed-length prefix of the uppercase
// hex encoding. The derivation is deterministic: the same URL always yields
// the same code. Distinct URLs whose hash prefixes coincide surface as a
// unique-constraint violation on insert.
func generateShortCode(originalURL string, length int) (string, error) {
	const op = "service.generateShortCode"

	sum := sha256.Sum256([]byte(originalURL))
	encoded := strings.ToUpper(hex.EncodeToString(sum[:]))

	if length <= 0 || length > len(encoded) {
		return "", fmt.Errorf("%s: short code length %d is out of range", op, length)
	}

	return encoded[:length], nil
}
