package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

// AccountNumberPrefix is the scheme prefix carried by every account number.
const AccountNumberPrefix = "BT"

// GenerateAccountNumber produces a candidate account number: the scheme
// prefix, seven time-derived digits and a three-digit random suffix.
// Candidates are not guaranteed unique; the caller checks the store and
// retries on collision.
func GenerateAccountNumber() (string, error) {
	stamp := time.Now().UnixMilli() % 10000000

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}
	var digits [3]byte
	for i, b := range suffix {
		digits[i] = b%10 + '0'
	}

	return fmt.Sprintf("%s%07d%s", AccountNumberPrefix, stamp, digits[:]), nil
}
