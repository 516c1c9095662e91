package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Event struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrganizerID       string         `gorm:"not null;index" json:"organizer_id"`
	Title             string         `gorm:"not null" json:"title"`
	Description       string         `json:"description"`
	StartDate         time.Time      `gorm:"not null" json:"start_date"`
	EndDate           time.Time      `gorm:"not null" json:"end_date"`
	Location          string         `json:"location"`
	MaxAttendees      int            `gorm:"not null;default:0" json:"max_attendees"`
	AvailableBenefits pq.StringArray `gorm:"type:text[]" json:"available_benefits"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

func (event *Event) HasBenefit(name string) bool {
	for _, b := range event.AvailableBenefits {
		if b == name {
			return true
		}
	}
	return false
}
