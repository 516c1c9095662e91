package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farellandr/eventpass/internal/metrics"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/repository"
	"github.com/farellandr/eventpass/internal/scan"
)

type ScanService struct {
	store    repository.Store
	sessions scan.SessionStore
	tickets  *TicketService
	logger   *zap.Logger
	now      func() time.Time
}

// TicketSummary is shown to the operator once the PIN is confirmed.
type TicketSummary struct {
	ID                uuid.UUID           `json:"id"`
	HolderName        string              `json:"holder_name"`
	Role              models.Role         `json:"role"`
	Status            models.TicketStatus `json:"status"`
	SelectedBenefits  []string            `json:"selected_benefits"`
	UsedBenefits      []string            `json:"used_benefits"`
	RemainingBenefits []string            `json:"remaining_benefits"`
}

// ScanView never contains the PIN or the QR payload.
type ScanView struct {
	SessionID   string         `json:"session_id"`
	EventID     uuid.UUID      `json:"event_id"`
	State       scan.State     `json:"state"`
	PinFailures int            `json:"pin_failures"`
	Ticket      *TicketSummary `json:"ticket,omitempty"`
}

func summarize(t *models.Ticket) *TicketSummary {
	return &TicketSummary{
		ID:                t.ID,
		HolderName:        t.HolderName,
		Role:              t.Role,
		Status:            t.Status(),
		SelectedBenefits:  append([]string{}, t.SelectedBenefits...),
		UsedBenefits:      append([]string{}, t.UsedBenefits...),
		RemainingBenefits: t.RemainingBenefits(),
	}
}

func view(s *scan.Session, t *models.Ticket) *ScanView {
	v := &ScanView{SessionID: s.ID, EventID: s.EventID, State: s.State, PinFailures: s.PinFailures}
	if t != nil && s.State == scan.StateVerified {
		v.Ticket = summarize(t)
	}
	return v
}

func (s *ScanService) load(ctx context.Context, id string) (*scan.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, storeErr("get scan session", err)
	}
	return session, nil
}

func (s *ScanService) save(ctx context.Context, session *scan.Session) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		return storeErr("save scan session", err)
	}
	return nil
}

func (s *ScanService) Start(ctx context.Context, eventID uuid.UUID) (*ScanView, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, storeErr("get event", err)
	}
	session := scan.NewSession(eventID, s.now())
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return view(session, nil), nil
}

func (s *ScanService) Get(ctx context.Context, id string) (*ScanView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != scan.StateVerified {
		return view(session, nil), nil
	}
	ticket, err := s.store.GetTicket(ctx, session.TicketID)
	if err != nil {
		return nil, storeErr("get ticket", err)
	}
	return view(session, ticket), nil
}

// Decode resolves a scanned payload against the session's event. An
// unknown payload returns ErrInvalidQR with the session back in scanning.
func (s *ScanService) Decode(ctx context.Context, id, payload string) (*ScanView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := session.Decode(payload, now); err != nil {
		return nil, err
	}

	ticket, err := s.store.GetTicketByQR(ctx, session.EventID, payload)
	found := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr("lookup ticket", err)
	}

	ticketID := uuid.Nil
	if found {
		ticketID = ticket.ID
	}
	resolveErr := session.Resolve(ticketID, found, now)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	if resolveErr != nil {
		metrics.Scan("invalid_qr")
		return view(session, nil), resolveErr
	}
	metrics.Scan("ok")
	return view(session, nil), nil
}

func (s *ScanService) SubmitPin(ctx context.Context, id, pin string) (*ScanView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State != scan.StatePinPending {
		return nil, fmt.Errorf("%w: pin while %s", scan.ErrInvalidTransition, session.State)
	}

	ticket, err := s.store.GetTicket(ctx, session.TicketID)
	if errors.Is(err, repository.ErrNotFound) {
		// deleted while the operator was typing
		session.Reset(s.now())
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		return view(session, nil), ErrInvalidQR
	}
	if err != nil {
		return nil, storeErr("get ticket", err)
	}

	err = s.tickets.VerifyPin(ctx, ticket.ID, pin)
	if err != nil && !errors.Is(err, ErrInvalidPin) {
		return nil, err
	}
	confirmErr := session.ConfirmPin(err == nil, s.now())
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	if confirmErr != nil {
		s.logger.Debug("pin rejected", zap.String("session_id", session.ID), zap.Int("failures", session.PinFailures))
		return view(session, nil), ErrInvalidPin
	}
	return view(session, ticket), nil
}

// Redeem requires a verified session and still re-checks the PIN through
// the ticket service; the session state is not a trust boundary.
func (s *ScanService) Redeem(ctx context.Context, id, benefit, pin string) (*ScanView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.RequireVerified(); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.Redeem(ctx, session.TicketID, benefit, pin)
	if err != nil {
		return nil, err
	}
	return view(session, ticket), nil
}

// Reset is "scan another ticket".
func (s *ScanService) Reset(ctx context.Context, id string) (*ScanView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Reset(s.now())
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return view(session, nil), nil
}

// Close drops the session. The ticket is untouched.
func (s *ScanService) Close(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return storeErr("delete scan session", err)
	}
	return nil
}
