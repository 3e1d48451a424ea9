package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortHash returns the first n hex characters of the SHA-256 of s.
// n is clamped to the full digest length (64 hex chars).
func ShortHash(s string, n int) string {
	sum := sha256.Sum256([]byte(s))
	h := hex.EncodeToString(sum[:])
	if n <= 0 || n > len(h) {
		return h
	}
	return h[:n]
}

// ContentHash returns the first n hex characters of the SHA-256 of raw bytes.
// Used for content-addressed asset filenames: identical bytes always hash to
// the same name regardless of where they were fetched from.
func ContentHash(data []byte, n int) string {
	sum := sha256.Sum256(data)
	h := hex.EncodeToString(sum[:])
	if n <= 0 || n > len(h) {
		return h
	}
	return h[:n]
}
