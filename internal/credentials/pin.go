package credentials

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

var ErrInvalidPIN = errors.New("credentials: pin must be six digits from 100000 to 999999")

const (
	PINLength = 6

	pinMin = 100000
	pinMax = 999999
)

var pinSpan = big.NewInt(pinMax - pinMin + 1)

// GeneratePIN returns a uniformly random six digit PIN in 100000-999999.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, pinSpan)
	if err != nil {
		return "", fmt.Errorf("credentials: generate pin: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+pinMin), nil
}

// ValidPIN reports whether s looks like a PIN: exactly six ASCII digits.
func ValidPIN(s string) bool {
	if len(s) != PINLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IssuablePIN reports whether s can be bound to a new ticket. It is stricter
// than ValidPIN: issued PINs never start with a zero.
func IssuablePIN(s string) bool {
	return ValidPIN(s) && s[0] != '0'
}
