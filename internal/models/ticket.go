package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketValid       TicketStatus = "valid"
	TicketUsed        TicketStatus = "used"
	TicketDeactivated TicketStatus = "deactivated"
)

// Ticket is one issued credential. TotalBenefitsUsed and IsUsed are
// materialized from UsedBenefits and are only written together with it.
type Ticket struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	EventID           uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_ticket_event_pin,priority:1" json:"event_id"`
	HolderName        string         `gorm:"not null" json:"holder_name"`
	HolderEmail       string         `gorm:"not null" json:"holder_email"`
	PinCode           string         `gorm:"size:6;not null;uniqueIndex:idx_ticket_event_pin,priority:2" json:"pin_code"`
	QRPayload         string         `gorm:"type:text;not null;index" json:"qr_payload"`
	Role              Role           `gorm:"not null;default:'attendee'" json:"role"`
	SelectedBenefits  pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"selected_benefits"`
	UsedBenefits      pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"used_benefits"`
	TotalBenefitsUsed int            `gorm:"not null;default:0" json:"total_benefits_used"`
	IsUsed            bool           `gorm:"not null;default:false" json:"is_used"`
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}

func (ticket *Ticket) Status() TicketStatus {
	switch {
	case !ticket.IsActive:
		return TicketDeactivated
	case ticket.IsUsed:
		return TicketUsed
	default:
		return TicketValid
	}
}

func (ticket *Ticket) HasSelected(benefit string) bool {
	return contains(ticket.SelectedBenefits, benefit)
}

func (ticket *Ticket) HasUsed(benefit string) bool {
	return contains(ticket.UsedBenefits, benefit)
}

// RemainingBenefits keeps the issuance order of SelectedBenefits.
func (ticket *Ticket) RemainingBenefits() []string {
	out := make([]string, 0, len(ticket.SelectedBenefits))
	for _, b := range ticket.SelectedBenefits {
		if !ticket.HasUsed(b) {
			out = append(out, b)
		}
	}
	return out
}

func (ticket *Ticket) Clone() *Ticket {
	c := *ticket
	c.SelectedBenefits = copyArray(ticket.SelectedBenefits)
	c.UsedBenefits = copyArray(ticket.UsedBenefits)
	return &c
}

func copyArray(a pq.StringArray) pq.StringArray {
	if a == nil {
		return nil
	}
	out := make(pq.StringArray, len(a))
	copy(out, a)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
