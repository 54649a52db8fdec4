package utils

import (
	"crypto/sha256"
	"fmt"
)

// HashString gives a fixed-size hex digest for use as a cache key segment.
func HashString(input string) string {
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:16])
}
