package render

import (
	"fmt"
	"math"
	"time"

	"github.com/farellandr/eventpass/internal/models"
)

const defaultDateLayout = "Jan 2, 2006"

// Bindings is the live data substituted into semantic elements.
type Bindings struct {
	EventTitle    string
	EventStart    time.Time
	EventEnd      time.Time
	HolderName    string
	PIN           string
	QRPayload     string
	Status        models.TicketStatus
	UsedBenefits  int
	TotalBenefits int
	// Now is the reference time for remaining days.
	Now time.Time
}

func TicketBindings(event *models.Event, ticket *models.Ticket, now time.Time) Bindings {
	return Bindings{
		EventTitle:    event.Title,
		EventStart:    event.StartDate,
		EventEnd:      event.EndDate,
		HolderName:    ticket.HolderName,
		PIN:           ticket.PinCode,
		QRPayload:     ticket.QRPayload,
		Status:        ticket.Status(),
		UsedBenefits:  len(ticket.UsedBenefits),
		TotalBenefits: len(ticket.SelectedBenefits),
		Now:           now,
	}
}

// SampleBindings fills a template preview when there is no real ticket.
func SampleBindings(now time.Time) Bindings {
	return Bindings{
		EventTitle:    "Sample Event",
		EventStart:    now.AddDate(0, 0, 7),
		EventEnd:      now.AddDate(0, 0, 8),
		HolderName:    "Jane Doe",
		PIN:           "123456",
		Status:        models.TicketValid,
		UsedBenefits:  1,
		TotalBenefits: 3,
		Now:           now,
	}
}

func StatusLabel(s models.TicketStatus) string {
	switch s {
	case models.TicketUsed:
		return "Used"
	case models.TicketDeactivated:
		return "Deactivated"
	default:
		return "Valid"
	}
}

func BenefitsLabel(used, total int) string {
	return fmt.Sprintf("%d/%d Used", used, total)
}

// RemainingDaysLabel counts whole days left until end, rounding up.
func RemainingDaysLabel(end, now time.Time) string {
	days := int(math.Ceil(end.Sub(now).Hours() / 24))
	switch {
	case days <= 0:
		return "Ended"
	case days == 1:
		return "1 day left"
	}
	return fmt.Sprintf("%d days left", days)
}

func DateLabel(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	if layout == "" {
		layout = defaultDateLayout
	}
	return t.Format(layout)
}
