package utils

import (
	"strings"
	"testing"
)

func TestGenerateAccountNumberFormat(t *testing.T) {
	number, err := GenerateAccountNumber()
	if err != nil {
		t.Fatalf("GenerateAccountNumber err=%v", err)
	}
	if !strings.HasPrefix(number, AccountNumberPrefix) {
		t.Errorf("number %q missing prefix %q", number, AccountNumberPrefix)
	}
	if len(number) != len(AccountNumberPrefix)+10 {
		t.Errorf("number %q has length %d, want %d", number, len(number), len(AccountNumberPrefix)+10)
	}
	for _, r := range number[len(AccountNumberPrefix):] {
		if r < '0' || r > '9' {
			t.Errorf("non-digit %q in number %q", r, number)
		}
	}
}

func TestGenerateAccountNumberVaries(t *testing.T) {
	seen := make(map[string]int)
	for i := 0; i < 100; i++ {
		number, err := GenerateAccountNumber()
		if err != nil {
			t.Fatal(err)
		}
		seen[number]++
	}
	// Candidates are random-suffixed; a tight loop may collide, but all
	// 100 landing on one value would mean the suffix is not random.
	if len(seen) < 2 {
		t.Errorf("expected varied candidates, got %d distinct", len(seen))
	}
}
