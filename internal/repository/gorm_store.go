package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/redemption"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *GormStore) CreateEvent(ctx context.Context, event *models.Event) error {
	return translate(s.db.WithContext(ctx).Create(event).Error)
}

func (s *GormStore) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (s *GormStore) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("start_date ASC").
		Find(&events).Error
	return events, translate(err)
}

// UpdateEvent never rewrites the owner.
func (s *GormStore) UpdateEvent(ctx context.Context, event *models.Event) error {
	res := s.db.WithContext(ctx).Model(event).
		Select("Title", "Description", "StartDate", "EndDate", "Location", "MaxAttendees", "AvailableBenefits").
		Updates(event)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Ticket{}).Error; err != nil {
			return translate(err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Event{})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) InsertTicket(ctx context.Context, ticket *models.Ticket) error {
	redemption.Normalize(ticket)
	return translate(s.db.WithContext(ctx).Create(ticket).Error)
}

func (s *GormStore) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error; err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

func (s *GormStore) GetTicketByQR(ctx context.Context, eventID uuid.UUID, payload string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND qr_payload = ?", eventID, payload).
		First(&ticket).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

func (s *GormStore) GetTicketByPIN(ctx context.Context, eventID uuid.UUID, pin string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND pin_code = ?", eventID, pin).
		First(&ticket).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

func (s *GormStore) ListTicketsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&tickets).Error
	return tickets, translate(err)
}

func (s *GormStore) UpdateTicket(ctx context.Context, id uuid.UUID, patch TicketPatch) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&ticket).Error; err != nil {
			return translate(err)
		}
		if err := applyPatch(&ticket, patch); err != nil {
			return err
		}
		redemption.Normalize(&ticket)
		return translate(tx.Save(&ticket).Error)
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// RedeemBenefit appends benefit in a single conditional UPDATE so that two
// scanners redeeming different benefits of the same ticket both land. The
// SET expressions read the pre-update row, so the counters are derived from
// the same array value that is written.
func (s *GormStore) RedeemBenefit(ctx context.Context, id uuid.UUID, benefit, pin string) (*models.Ticket, error) {
	var ticket models.Ticket
	res := s.db.WithContext(ctx).Model(&ticket).
		Clauses(clause.Returning{}).
		Where("id = ? AND is_active AND NOT is_used AND pin_code = ?", id, pin).
		Where("?::text = ANY(selected_benefits) AND NOT (?::text = ANY(used_benefits))", benefit, benefit).
		Updates(map[string]any{
			"used_benefits":       gorm.Expr("array_append(used_benefits, ?::text)", benefit),
			"total_benefits_used": gorm.Expr("cardinality(used_benefits) + 1"),
			"is_used":             gorm.Expr("array_append(used_benefits, ?::text) @> selected_benefits", benefit),
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrConditionFailed
	}
	return &ticket, nil
}

func (s *GormStore) DeactivateTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	res := s.db.WithContext(ctx).Model(&ticket).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &ticket, nil
}

func (s *GormStore) DeleteTicket(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Ticket{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListTemplates(ctx context.Context, filter TemplateFilter) ([]models.TicketTemplate, error) {
	query := s.db.WithContext(ctx).Model(&models.TicketTemplate{})
	if filter.OrganizerID != "" {
		query = query.Where("organizer_id = ?", filter.OrganizerID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var templates []models.TicketTemplate
	err := query.Order("created_at DESC").Find(&templates).Error
	return templates, translate(err)
}

func (s *GormStore) GetTemplate(ctx context.Context, id uuid.UUID) (*models.TicketTemplate, error) {
	var template models.TicketTemplate
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

func (s *GormStore) InsertTemplate(ctx context.Context, template *models.TicketTemplate) error {
	return translate(s.db.WithContext(ctx).Create(template).Error)
}

func (s *GormStore) UpdateTemplateDocument(ctx context.Context, id uuid.UUID, doc design.Document) (*models.TicketTemplate, error) {
	var template models.TicketTemplate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&template).Error; err != nil {
			return translate(err)
		}
		template.Document = doc.Clone()
		return translate(tx.Save(&template).Error)
	})
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (s *GormStore) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.TicketTemplate{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
