// Package redemption holds the rules for consuming ticket benefits.
//
// A ticket is Open while active and not fully used, Closed once every
// selected benefit has been redeemed, and Deactivated when staff switch it
// off. Closed and Deactivated are terminal for redemption. None of the
// functions here touch storage; the repository applies the same rules as a
// single conditional update.
package redemption

import (
	"crypto/subtle"
	"errors"

	"github.com/farellandr/eventpass/internal/models"
)

var (
	ErrInvalidPin         = errors.New("redemption: invalid pin")
	ErrAlreadyRedeemed    = errors.New("redemption: benefit already redeemed")
	ErrTicketClosed       = errors.New("redemption: ticket closed")
	ErrBenefitNotSelected = errors.New("redemption: benefit not on ticket")
)

type State int

const (
	StateOpen State = iota
	StateClosed
	StateDeactivated
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateDeactivated:
		return "deactivated"
	}
	return "unknown"
}

func StateOf(t *models.Ticket) State {
	switch {
	case !t.IsActive:
		return StateDeactivated
	case t.IsUsed:
		return StateClosed
	default:
		return StateOpen
	}
}

// VerifyPin compares in constant time and never mutates the ticket.
func VerifyPin(t *models.Ticket, supplied string) bool {
	if t.PinCode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(t.PinCode), []byte(supplied)) == 1
}

// Check reports why benefit cannot be redeemed, or nil if it can.
//
// A deactivated ticket fails before the PIN is looked at. A benefit that was
// already redeemed reports ErrAlreadyRedeemed even on a closed ticket, so a
// repeated scan stays informational.
func Check(t *models.Ticket, benefit, pin string) error {
	if !t.IsActive {
		return ErrTicketClosed
	}
	if !VerifyPin(t, pin) {
		return ErrInvalidPin
	}
	if t.HasUsed(benefit) {
		return ErrAlreadyRedeemed
	}
	if t.IsUsed {
		return ErrTicketClosed
	}
	if !t.HasSelected(benefit) {
		return ErrBenefitNotSelected
	}
	return nil
}

// Redeem marks benefit used on t. On error t is left exactly as it was.
func Redeem(t *models.Ticket, benefit, pin string) error {
	if err := Check(t, benefit, pin); err != nil {
		return err
	}
	t.UsedBenefits = append(t.UsedBenefits, benefit)
	Normalize(t)
	return nil
}

// Deactivate is idempotent and keeps the redemption history.
func Deactivate(t *models.Ticket) {
	t.IsActive = false
}

// Normalize recomputes the counters derived from UsedBenefits.
func Normalize(t *models.Ticket) {
	t.TotalBenefitsUsed = len(t.UsedBenefits)
	t.IsUsed = len(t.SelectedBenefits) > 0 && SameSet(t.UsedBenefits, t.SelectedBenefits)
}

// SameSet compares a and b as sets; order and duplicates are ignored.
func SameSet(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
		other[v] = struct{}{}
	}
	return len(set) == len(other)
}

// Dedupe keeps the first occurrence of each non-empty name.
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
