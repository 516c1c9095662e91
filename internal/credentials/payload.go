package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformedPayload = errors.New("credentials: malformed qr payload")

// Payload is the JSON document embedded in a ticket's QR code. Field names
// are part of the wire format of already-issued tickets and must not change.
type Payload struct {
	EventID         string `json:"eventId"`
	ParticipantName string `json:"participantName"`
	Email           string `json:"email"`
	PinCode         string `json:"pinCode"`
	TicketID        string `json:"ticketId,omitempty"`
	Timestamp       int64  `json:"timestamp"`
}

func (p Payload) IssuedAt() time.Time {
	return time.UnixMilli(p.Timestamp)
}

func EncodePayload(p Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("credentials: encode payload: %w", err)
	}
	return string(b), nil
}

// DecodePayload parses a scanned QR string. Unknown fields are ignored and
// ticketId may be absent.
func DecodePayload(raw string) (Payload, error) {
	var p Payload
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return p, ErrMalformedPayload
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.EventID == "" || p.PinCode == "" {
		return p, fmt.Errorf("%w: missing eventId or pinCode", ErrMalformedPayload)
	}
	return p, nil
}
