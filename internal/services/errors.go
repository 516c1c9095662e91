package services

import (
	"errors"
	"fmt"

	"github.com/farellandr/eventpass/internal/redemption"
	"github.com/farellandr/eventpass/internal/repository"
	"github.com/farellandr/eventpass/internal/scan"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalidQR = scan.ErrInvalidQR

	ErrInvalidPin         = redemption.ErrInvalidPin
	ErrAlreadyRedeemed    = redemption.ErrAlreadyRedeemed
	ErrTicketClosed       = redemption.ErrTicketClosed
	ErrBenefitNotSelected = redemption.ErrBenefitNotSelected
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BackendError wraps storage, cache and broker failures. They are reported
// to the caller as is and never retried here.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// storeErr maps repository errors onto the service taxonomy.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, scan.ErrSessionNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrUsedBenefitRemoved):
		return invalid("selected_benefits", "a redeemed benefit cannot be removed")
	}
	return &BackendError{Op: op, Err: err}
}

// Code is the machine-readable error code used in API responses.
func Code(err error) string {
	var verr *ValidationError
	var berr *BackendError
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidQR):
		return "invalid_qr"
	case errors.Is(err, ErrInvalidPin):
		return "invalid_pin"
	case errors.Is(err, ErrAlreadyRedeemed):
		return "already_redeemed"
	case errors.Is(err, ErrTicketClosed):
		return "ticket_closed"
	case errors.Is(err, ErrBenefitNotSelected):
		return "benefit_not_selected"
	case errors.Is(err, scan.ErrInvalidTransition):
		return "invalid_state"
	case errors.As(err, &verr):
		return "validation"
	case errors.As(err, &berr):
		return "backend"
	}
	return "internal"
}
