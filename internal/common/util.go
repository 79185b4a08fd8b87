package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MakeRandHexString returns size random bytes encoded as hex, so the result
// is 2*size characters long. The admin CLI uses it for generated passwords
// and throwaway signing secrets.
func MakeRandHexString(size int) (string, error) {
	if size < 0 {
		return "", fmt.Errorf("random string size must not be negative, got %d", size)
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites a password buffer with zeros once it is no longer needed.
func WipeByteArray(b []byte) {
	clear(b)
}
