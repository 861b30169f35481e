package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Input validators for the presentation boundary. All are pure functions;
// core operations re-validate what matters to them.

// IsPositiveDecimal reports whether s parses as a decimal greater than zero.
func IsPositiveDecimal(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	d, err := decimal.NewFromString(s)
	return err == nil && d.Sign() > 0
}

// IsPositiveInteger reports whether s parses as an integer greater than zero.
func IsPositiveInteger(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}

// IsValidAccountNumber reports whether s is a non-empty account number.
func IsValidAccountNumber(s string) bool {
	return strings.TrimSpace(s) != ""
}
