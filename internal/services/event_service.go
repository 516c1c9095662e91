package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/redemption"
	"github.com/farellandr/eventpass/internal/repository"
)

type EventService struct {
	store  repository.Store
	logger *zap.Logger
}

type EventInput struct {
	Title             string
	Description       string
	StartDate         time.Time
	EndDate           time.Time
	Location          string
	MaxAttendees      int
	AvailableBenefits []string
}

func (in EventInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title", "is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return invalid("start_date", "start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return invalid("end_date", "must not be before start_date")
	}
	if in.MaxAttendees < 0 {
		return invalid("max_attendees", "must not be negative")
	}
	return nil
}

func (in EventInput) apply(event *models.Event) {
	event.Title = strings.TrimSpace(in.Title)
	event.Description = in.Description
	event.StartDate = in.StartDate
	event.EndDate = in.EndDate
	event.Location = in.Location
	event.MaxAttendees = in.MaxAttendees
	event.AvailableBenefits = redemption.Dedupe(trimAll(in.AvailableBenefits))
}

func (s *EventService) Create(ctx context.Context, actor Actor, in EventInput) (*models.Event, error) {
	if actor.UserID == "" {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	event := &models.Event{OrganizerID: actor.UserID}
	in.apply(event)
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, storeErr("create event", err)
	}
	s.logger.Info("event created", zap.String("event_id", event.ID.String()))
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, storeErr("get event", err)
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context, actor Actor) ([]models.Event, error) {
	events, err := s.store.ListEventsByOrganizer(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	return events, nil
}

func (s *EventService) Update(ctx context.Context, actor Actor, id uuid.UUID, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	event, err := s.ownedEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.apply(event)
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, storeErr("update event", err)
	}
	return event, nil
}

// Delete removes the event together with its tickets.
func (s *EventService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.ownedEvent(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return storeErr("delete event", err)
	}
	s.logger.Info("event deleted", zap.String("event_id", id.String()))
	return nil
}

func trimAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// Authorize reports whether actor may manage the event.
func (s *EventService) Authorize(ctx context.Context, actor Actor, id uuid.UUID) error {
	_, err := s.ownedEvent(ctx, actor, id)
	return err
}
