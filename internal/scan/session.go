// Package scan models a check-in scanner session: decode a QR code, resolve
// it to a ticket of the current event, confirm the holder's PIN, then redeem
// benefits until the operator scans the next ticket.
//
// A session never holds the PIN the operator typed in. The decoded payload
// is kept only between Decode and Resolve and is not serialized.
package scan

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidQR         = errors.New("scan: qr code does not match a ticket of this event")
	ErrInvalidPin        = errors.New("scan: pin does not match")
	ErrInvalidTransition = errors.New("scan: invalid transition")
	ErrSessionNotFound   = errors.New("scan: session not found")
)

type State string

const (
	StateScanning   State = "scanning"
	StateResolved   State = "resolved"
	StatePinPending State = "pin_pending"
	StateVerified   State = "verified"
)

type Session struct {
	ID          string    `json:"id"`
	EventID     uuid.UUID `json:"event_id"`
	State       State     `json:"state"`
	Payload     string    `json:"-"`
	TicketID    uuid.UUID `json:"ticket_id"`
	PinFailures int       `json:"pin_failures"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewSession(eventID uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		EventID:   eventID,
		State:     StateScanning,
		UpdatedAt: now,
	}
}

func (s *Session) expect(want State) error {
	if s.State != want {
		return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, want, s.State)
	}
	return nil
}

// Decode records a decoded QR payload and pauses scanning.
func (s *Session) Decode(payload string, now time.Time) error {
	if err := s.expect(StateScanning); err != nil {
		return err
	}
	s.Payload = payload
	s.State = StateResolved
	s.UpdatedAt = now
	return nil
}

// Resolve applies the ticket lookup for the decoded payload. A miss sends
// the session back to scanning.
func (s *Session) Resolve(ticketID uuid.UUID, found bool, now time.Time) error {
	if err := s.expect(StateResolved); err != nil {
		return err
	}
	s.Payload = ""
	s.UpdatedAt = now
	if !found {
		s.State = StateScanning
		s.TicketID = uuid.Nil
		return ErrInvalidQR
	}
	s.TicketID = ticketID
	s.PinFailures = 0
	s.State = StatePinPending
	return nil
}

// ConfirmPin applies the outcome of a PIN check. A mismatch keeps the
// session waiting for another attempt.
func (s *Session) ConfirmPin(ok bool, now time.Time) error {
	if err := s.expect(StatePinPending); err != nil {
		return err
	}
	s.UpdatedAt = now
	if !ok {
		s.PinFailures++
		return ErrInvalidPin
	}
	s.State = StateVerified
	return nil
}

func (s *Session) RequireVerified() error {
	return s.expect(StateVerified)
}

// Reset is "scan another ticket". Always allowed.
func (s *Session) Reset(now time.Time) {
	s.State = StateScanning
	s.Payload = ""
	s.TicketID = uuid.Nil
	s.PinFailures = 0
	s.UpdatedAt = now
}
