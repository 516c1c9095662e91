// Package repository is the persistence boundary for events, tickets and
// ticket templates. GormStore backs production on Postgres; MemoryStore has
// the same semantics and backs tests and database-less development runs.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/models"
)

var (
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate is returned when a ticket PIN collides within its event.
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrConditionFailed means a conditional update matched no row. The
	// caller re-reads to find out why.
	ErrConditionFailed = errors.New("repository: condition failed")
	// ErrUsedBenefitRemoved rejects a patch dropping a benefit that was
	// already redeemed from the selection.
	ErrUsedBenefitRemoved = errors.New("repository: cannot unselect a used benefit")
)

// TicketPatch carries the organizer-editable ticket fields. Nil fields are
// left untouched. Counters are never patched directly.
type TicketPatch struct {
	HolderName       *string
	HolderEmail      *string
	Role             *models.Role
	SelectedBenefits []string
	IsActive         *bool
}

type TemplateFilter struct {
	OrganizerID string
	Category    string
}

type Store interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	InsertTicket(ctx context.Context, ticket *models.Ticket) error
	GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	GetTicketByQR(ctx context.Context, eventID uuid.UUID, payload string) (*models.Ticket, error)
	GetTicketByPIN(ctx context.Context, eventID uuid.UUID, pin string) (*models.Ticket, error)
	ListTicketsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error)
	UpdateTicket(ctx context.Context, id uuid.UUID, patch TicketPatch) (*models.Ticket, error)
	RedeemBenefit(ctx context.Context, id uuid.UUID, benefit, pin string) (*models.Ticket, error)
	DeactivateTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, id uuid.UUID) error

	ListTemplates(ctx context.Context, filter TemplateFilter) ([]models.TicketTemplate, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.TicketTemplate, error)
	InsertTemplate(ctx context.Context, template *models.TicketTemplate) error
	UpdateTemplateDocument(ctx context.Context, id uuid.UUID, doc design.Document) (*models.TicketTemplate, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

// applyPatch mutates ticket in place. Shared by both stores so the rules
// for editing a ticket live in one spot.
func applyPatch(ticket *models.Ticket, patch TicketPatch) error {
	if patch.HolderName != nil {
		ticket.HolderName = *patch.HolderName
	}
	if patch.HolderEmail != nil {
		ticket.HolderEmail = *patch.HolderEmail
	}
	if patch.Role != nil {
		ticket.Role = *patch.Role
	}
	if patch.SelectedBenefits != nil {
		for _, used := range ticket.UsedBenefits {
			if !contains(patch.SelectedBenefits, used) {
				return ErrUsedBenefitRemoved
			}
		}
		ticket.SelectedBenefits = append([]string(nil), patch.SelectedBenefits...)
	}
	if patch.IsActive != nil {
		ticket.IsActive = *patch.IsActive
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
