// Package credentials generates the PIN and QR payload bound to a ticket at
// issuance. Generation is pure: nothing is stored until the caller persists
// the ticket, so calling Issue again is how an organizer refreshes a PIN
// before committing.
package credentials

import "time"

type Holder struct {
	Name  string
	Email string
}

type Credentials struct {
	PIN       string  `json:"pin_code"`
	QRPayload string  `json:"qr_payload"`
	Payload   Payload `json:"-"`
}

func Issue(eventID, ticketID string, holder Holder, now time.Time) (Credentials, error) {
	pin, err := GeneratePIN()
	if err != nil {
		return Credentials{}, err
	}
	return Bind(eventID, ticketID, holder, pin, now)
}

// Bind builds credentials around a PIN the organizer has already seen,
// such as one returned by an earlier preview.
func Bind(eventID, ticketID string, holder Holder, pin string, now time.Time) (Credentials, error) {
	if !IssuablePIN(pin) {
		return Credentials{}, ErrInvalidPIN
	}
	p := Payload{
		EventID:         eventID,
		ParticipantName: holder.Name,
		Email:           holder.Email,
		PinCode:         pin,
		TicketID:        ticketID,
		Timestamp:       now.UnixMilli(),
	}
	raw, err := EncodePayload(p)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{PIN: pin, QRPayload: raw, Payload: p}, nil
}
