package design

import (
	"encoding/json"
	"fmt"
)

// Kind is the closed set of element kinds a template may contain.
type Kind string

const (
	KindText          Kind = "text"
	KindQRCode        Kind = "qr-code"
	KindDate          Kind = "date"
	KindUserName      Kind = "user-name"
	KindEventName     Kind = "event-name"
	KindStatus        Kind = "status"
	KindBenefits      Kind = "benefits"
	KindRemainingDays Kind = "remaining-days"
	KindPinCode       Kind = "pin-code"
	KindLogo          Kind = "logo"
	KindRectangle     Kind = "rectangle"
	KindCircle        Kind = "circle"
)

var kinds = []Kind{
	KindText,
	KindQRCode,
	KindDate,
	KindUserName,
	KindEventName,
	KindStatus,
	KindBenefits,
	KindRemainingDays,
	KindPinCode,
	KindLogo,
	KindRectangle,
	KindCircle,
}

func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown element kind %q", ErrInvalidDocument, s)
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Textual reports whether the kind renders a line of text.
func (k Kind) Textual() bool {
	switch k {
	case KindText, KindDate, KindUserName, KindEventName, KindStatus,
		KindBenefits, KindRemainingDays, KindPinCode:
		return true
	}
	return false
}
