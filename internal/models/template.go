package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/eventpass/internal/design"
)

type TicketTemplate struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrganizerID string          `gorm:"not null;index" json:"organizer_id"`
	Name        string          `gorm:"not null" json:"name"`
	Category    string          `gorm:"index" json:"category"`
	Document    design.Document `gorm:"serializer:json;type:jsonb;not null" json:"document"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (template *TicketTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	return
}
