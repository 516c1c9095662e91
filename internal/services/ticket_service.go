package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farellandr/eventpass/internal/credentials"
	"github.com/farellandr/eventpass/internal/live"
	"github.com/farellandr/eventpass/internal/metrics"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/redemption"
	"github.com/farellandr/eventpass/internal/repository"
)

type TicketService struct {
	store    repository.Store
	events   *EventService
	live     live.Publisher
	logger   *zap.Logger
	now      func() time.Time
	attempts int
}

type IssueInput struct {
	HolderName       string
	HolderEmail      string
	Role             string
	SelectedBenefits []string
	// PinCode optionally commits a PIN shown by PreviewCredentials.
	PinCode string
}

type TicketUpdateInput struct {
	HolderName       *string
	HolderEmail      *string
	Role             *string
	SelectedBenefits []string
	IsActive         *bool
}

// LookupView is what the public PIN lookup reveals. It carries no
// credentials.
type LookupView struct {
	TicketID          uuid.UUID           `json:"ticket_id"`
	EventTitle        string              `json:"event_title"`
	HolderName        string              `json:"holder_name"`
	Role              models.Role         `json:"role"`
	Status            models.TicketStatus `json:"status"`
	SelectedBenefits  []string            `json:"selected_benefits"`
	UsedBenefits      []string            `json:"used_benefits"`
	RemainingBenefits []string            `json:"remaining_benefits"`
}

func validateHolder(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("holder_name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("holder_email", "is not a valid email address")
	}
	return nil
}

func checkBenefits(event *models.Event, selected []string) ([]string, error) {
	selected = redemption.Dedupe(trimAll(selected))
	for _, b := range selected {
		if !event.HasBenefit(b) {
			return nil, invalid("selected_benefits", "%q is not offered by this event", b)
		}
	}
	return selected, nil
}

// PreviewCredentials generates a PIN and QR payload without storing
// anything. Calling it again is how an organizer refreshes the PIN.
func (s *TicketService) PreviewCredentials(ctx context.Context, actor Actor, eventID uuid.UUID, holder credentials.Holder) (credentials.Credentials, error) {
	if _, err := s.events.ownedEvent(ctx, actor, eventID); err != nil {
		return credentials.Credentials{}, err
	}
	for i := 0; i < s.attempts; i++ {
		c, err := credentials.Issue(eventID.String(), "", holder, s.now())
		if err != nil {
			return credentials.Credentials{}, err
		}
		_, err = s.store.GetTicketByPIN(ctx, eventID, c.PIN)
		if errors.Is(err, repository.ErrNotFound) {
			return c, nil
		}
		if err != nil {
			return credentials.Credentials{}, storeErr("check pin", err)
		}
	}
	return credentials.Credentials{}, invalid("pin_code", "could not find a free pin")
}

func (s *TicketService) Issue(ctx context.Context, actor Actor, eventID uuid.UUID, in IssueInput) (*models.Ticket, error) {
	event, err := s.events.ownedEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if err := validateHolder(in.HolderName, in.HolderEmail); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, invalid("role", "%v", err)
	}
	selected, err := checkBenefits(event, in.SelectedBenefits)
	if err != nil {
		return nil, err
	}
	if in.PinCode != "" && !credentials.IssuablePIN(in.PinCode) {
		return nil, invalid("pin_code", "must be six digits from 100000 to 999999")
	}
	if event.MaxAttendees > 0 {
		existing, err := s.store.ListTicketsByEvent(ctx, eventID)
		if err != nil {
			return nil, storeErr("count tickets", err)
		}
		if len(existing) >= event.MaxAttendees {
			return nil, invalid("event", "has reached its attendee limit")
		}
	}

	holder := credentials.Holder{Name: strings.TrimSpace(in.HolderName), Email: strings.TrimSpace(in.HolderEmail)}
	for i := 0; i < s.attempts; i++ {
		ticketID := uuid.New()
		var c credentials.Credentials
		if in.PinCode != "" {
			c, err = credentials.Bind(eventID.String(), ticketID.String(), holder, in.PinCode, s.now())
		} else {
			c, err = credentials.Issue(eventID.String(), ticketID.String(), holder, s.now())
		}
		if err != nil {
			return nil, err
		}

		ticket := &models.Ticket{
			ID:               ticketID,
			EventID:          eventID,
			HolderName:       holder.Name,
			HolderEmail:      holder.Email,
			PinCode:          c.PIN,
			QRPayload:        c.QRPayload,
			Role:             role,
			SelectedBenefits: selected,
			UsedBenefits:     []string{},
			IsActive:         true,
		}
		err = s.store.InsertTicket(ctx, ticket)
		if err == nil {
			metrics.TicketIssued()
			s.live.Publish(live.TicketUpdate(live.UpdateIssued, ticket, s.now()))
			s.logger.Info("ticket issued",
				zap.String("ticket_id", ticket.ID.String()),
				zap.String("event_id", eventID.String()),
			)
			return ticket, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, storeErr("insert ticket", err)
		}
		if in.PinCode != "" {
			return nil, invalid("pin_code", "is already used by another ticket of this event")
		}
		s.logger.Debug("pin collision, regenerating", zap.Int("attempt", i+1))
	}
	return nil, invalid("pin_code", "could not find a free pin")
}

// ownedTicket loads a ticket and checks that actor manages its event.
func (s *TicketService) ownedTicket(ctx context.Context, actor Actor, id uuid.UUID) (*models.Ticket, *models.Event, error) {
	ticket, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, nil, storeErr("get ticket", err)
	}
	event, err := s.events.ownedEvent(ctx, actor, ticket.EventID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, event, nil
}

func (s *TicketService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Ticket, error) {
	ticket, _, err := s.ownedTicket(ctx, actor, id)
	return ticket, err
}

func (s *TicketService) ListByEvent(ctx context.Context, actor Actor, eventID uuid.UUID) ([]models.Ticket, error) {
	if _, err := s.events.ownedEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	tickets, err := s.store.ListTicketsByEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("list tickets", err)
	}
	return tickets, nil
}

func (s *TicketService) Update(ctx context.Context, actor Actor, id uuid.UUID, in TicketUpdateInput) (*models.Ticket, error) {
	current, event, err := s.ownedTicket(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var patch repository.TicketPatch
	if in.HolderName != nil || in.HolderEmail != nil {
		name, email := current.HolderName, current.HolderEmail
		if in.HolderName != nil {
			name = strings.TrimSpace(*in.HolderName)
		}
		if in.HolderEmail != nil {
			email = strings.TrimSpace(*in.HolderEmail)
		}
		if err := validateHolder(name, email); err != nil {
			return nil, err
		}
		patch.HolderName, patch.HolderEmail = &name, &email
	}
	if in.Role != nil {
		role, err := models.ParseRole(*in.Role)
		if err != nil {
			return nil, invalid("role", "%v", err)
		}
		patch.Role = &role
	}
	if in.SelectedBenefits != nil {
		selected, err := checkBenefits(event, in.SelectedBenefits)
		if err != nil {
			return nil, err
		}
		patch.SelectedBenefits = selected
	}
	patch.IsActive = in.IsActive

	ticket, err := s.store.UpdateTicket(ctx, id, patch)
	if err != nil {
		return nil, storeErr("update ticket", err)
	}
	s.live.Publish(live.TicketUpdate(live.UpdateUpdated, ticket, s.now()))
	return ticket, nil
}

func (s *TicketService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	ticket, _, err := s.ownedTicket(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTicket(ctx, id); err != nil {
		return storeErr("delete ticket", err)
	}
	s.live.Publish(live.TicketUpdate(live.UpdateDeleted, ticket, s.now()))
	return nil
}

// Deactivate is idempotent. Redemption history is kept.
func (s *TicketService) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) (*models.Ticket, error) {
	if _, _, err := s.ownedTicket(ctx, actor, id); err != nil {
		return nil, err
	}
	ticket, err := s.store.DeactivateTicket(ctx, id)
	if err != nil {
		return nil, storeErr("deactivate ticket", err)
	}
	s.live.Publish(live.TicketUpdate(live.UpdateDeactivated, ticket, s.now()))
	s.logger.Info("ticket deactivated", zap.String("ticket_id", id.String()))
	return ticket, nil
}

// VerifyPin is read-only. A mismatch is reported as ErrInvalidPin without
// any hint about the stored value.
func (s *TicketService) VerifyPin(ctx context.Context, id uuid.UUID, pin string) error {
	ticket, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return storeErr("get ticket", err)
	}
	ok := redemption.VerifyPin(ticket, pin)
	metrics.PinCheck(ok)
	if !ok {
		return ErrInvalidPin
	}
	return nil
}

func (s *TicketService) LookupByPin(ctx context.Context, eventID uuid.UUID, pin string) (*LookupView, error) {
	if !credentials.ValidPIN(pin) {
		return nil, invalid("pin_code", "must be six digits")
	}
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("get event", err)
	}
	ticket, err := s.store.GetTicketByPIN(ctx, eventID, pin)
	metrics.PinCheck(err == nil)
	if err != nil {
		return nil, storeErr("lookup ticket", err)
	}
	return &LookupView{
		TicketID:          ticket.ID,
		EventTitle:        event.Title,
		HolderName:        ticket.HolderName,
		Role:              ticket.Role,
		Status:            ticket.Status(),
		SelectedBenefits:  append([]string{}, ticket.SelectedBenefits...),
		UsedBenefits:      append([]string{}, ticket.UsedBenefits...),
		RemainingBenefits: ticket.RemainingBenefits(),
	}, nil
}

// Redeem marks one benefit used. The PIN is always checked here, whatever
// state the calling UI is in. The store applies the change as a single
// conditional update; when it matches nothing the ticket is re-read only
// to explain why.
func (s *TicketService) Redeem(ctx context.Context, id uuid.UUID, benefit, pin string) (*models.Ticket, error) {
	benefit = strings.TrimSpace(benefit)
	if benefit == "" {
		return nil, invalid("benefit", "is required")
	}

	ticket, err := s.store.RedeemBenefit(ctx, id, benefit, pin)
	if err == nil {
		metrics.Redemption("ok")
		s.live.Publish(live.TicketUpdate(live.UpdateRedeemed, ticket, s.now()))
		s.logger.Info("benefit redeemed",
			zap.String("ticket_id", id.String()),
			zap.String("benefit", benefit),
			zap.Bool("closed", ticket.IsUsed),
		)
		return ticket, nil
	}
	if !errors.Is(err, repository.ErrConditionFailed) {
		err = storeErr("redeem benefit", err)
		metrics.Redemption(Code(err))
		return nil, err
	}

	current, err := s.store.GetTicket(ctx, id)
	if err != nil {
		err = storeErr("get ticket", err)
		metrics.Redemption(Code(err))
		return nil, err
	}
	reason := redemption.Check(current, benefit, pin)
	if reason == nil {
		// the row changed between the update and the re-read
		reason = &BackendError{Op: "redeem benefit", Err: repository.ErrConditionFailed}
	}
	metrics.Redemption(Code(reason))
	return nil, reason
}
