package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/redemption"
)

// MemoryStore keeps everything in maps behind one mutex. Values are copied
// on the way in and out so callers never alias stored state.
type MemoryStore struct {
	mu        sync.Mutex
	now       func() time.Time
	events    map[uuid.UUID]models.Event
	tickets   map[uuid.UUID]*models.Ticket
	templates map[uuid.UUID]models.TicketTemplate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:       func() time.Time { return time.Now().UTC() },
		events:    make(map[uuid.UUID]models.Event),
		tickets:   make(map[uuid.UUID]*models.Ticket),
		templates: make(map[uuid.UUID]models.TicketTemplate),
	}
}

func copyEvent(e models.Event) models.Event {
	e.AvailableBenefits = append([]string(nil), e.AvailableBenefits...)
	return e
}

func copyTemplate(t models.TicketTemplate) models.TicketTemplate {
	t.Document = t.Document.Clone()
	return t
}

func (s *MemoryStore) CreateEvent(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if _, ok := s.events[event.ID]; ok {
		return ErrDuplicate
	}
	now := s.now()
	event.CreatedAt, event.UpdatedAt = now, now
	s.events[event.ID] = copyEvent(*event)
	return nil
}

func (s *MemoryStore) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	e = copyEvent(e)
	return &e, nil
}

func (s *MemoryStore) ListEventsByOrganizer(_ context.Context, organizerID string) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Event
	for _, e := range s.events {
		if e.OrganizerID == organizerID {
			out = append(out, copyEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *MemoryStore) UpdateEvent(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.events[event.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Title = event.Title
	stored.Description = event.Description
	stored.StartDate = event.StartDate
	stored.EndDate = event.EndDate
	stored.Location = event.Location
	stored.MaxAttendees = event.MaxAttendees
	stored.AvailableBenefits = append([]string(nil), event.AvailableBenefits...)
	stored.UpdatedAt = s.now()
	s.events[event.ID] = stored
	*event = copyEvent(stored)
	return nil
}

func (s *MemoryStore) DeleteEvent(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	for tid, t := range s.tickets {
		if t.EventID == id {
			delete(s.tickets, tid)
		}
	}
	delete(s.events, id)
	return nil
}

func (s *MemoryStore) InsertTicket(_ context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if _, ok := s.tickets[ticket.ID]; ok {
		return ErrDuplicate
	}
	for _, t := range s.tickets {
		if t.EventID == ticket.EventID && t.PinCode == ticket.PinCode {
			return ErrDuplicate
		}
	}
	if ticket.UsedBenefits == nil {
		ticket.UsedBenefits = []string{}
	}
	redemption.Normalize(ticket)
	now := s.now()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	s.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (s *MemoryStore) GetTicket(_ context.Context, id uuid.UUID) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (s *MemoryStore) find(match func(*models.Ticket) bool) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if match(t) {
			return t.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetTicketByQR(_ context.Context, eventID uuid.UUID, payload string) (*models.Ticket, error) {
	return s.find(func(t *models.Ticket) bool {
		return t.EventID == eventID && t.QRPayload == payload
	})
}

func (s *MemoryStore) GetTicketByPIN(_ context.Context, eventID uuid.UUID, pin string) (*models.Ticket, error) {
	return s.find(func(t *models.Ticket) bool {
		return t.EventID == eventID && t.PinCode == pin
	})
}

func (s *MemoryStore) ListTicketsByEvent(_ context.Context, eventID uuid.UUID) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Ticket
	for _, t := range s.tickets {
		if t.EventID == eventID {
			out = append(out, *t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpdateTicket(_ context.Context, id uuid.UUID, patch TicketPatch) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := stored.Clone()
	if err := applyPatch(next, patch); err != nil {
		return nil, err
	}
	redemption.Normalize(next)
	next.UpdatedAt = s.now()
	s.tickets[id] = next
	return next.Clone(), nil
}

// RedeemBenefit evaluates the same predicate as the SQL statement in
// GormStore while holding the store lock.
func (s *MemoryStore) RedeemBenefit(_ context.Context, id uuid.UUID, benefit, pin string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[id]
	if !ok {
		return nil, ErrConditionFailed
	}
	next := stored.Clone()
	if err := redemption.Redeem(next, benefit, pin); err != nil {
		return nil, ErrConditionFailed
	}
	next.UpdatedAt = s.now()
	s.tickets[id] = next
	return next.Clone(), nil
}

func (s *MemoryStore) DeactivateTicket(_ context.Context, id uuid.UUID) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	redemption.Deactivate(stored)
	stored.UpdatedAt = s.now()
	return stored.Clone(), nil
}

func (s *MemoryStore) DeleteTicket(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[id]; !ok {
		return ErrNotFound
	}
	delete(s.tickets, id)
	return nil
}

func (s *MemoryStore) ListTemplates(_ context.Context, filter TemplateFilter) ([]models.TicketTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.TicketTemplate
	for _, t := range s.templates {
		if filter.OrganizerID != "" && t.OrganizerID != filter.OrganizerID {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		out = append(out, copyTemplate(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetTemplate(_ context.Context, id uuid.UUID) (*models.TicketTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	t = copyTemplate(t)
	return &t, nil
}

func (s *MemoryStore) InsertTemplate(_ context.Context, template *models.TicketTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	if _, ok := s.templates[template.ID]; ok {
		return ErrDuplicate
	}
	now := s.now()
	template.CreatedAt, template.UpdatedAt = now, now
	s.templates[template.ID] = copyTemplate(*template)
	return nil
}

func (s *MemoryStore) UpdateTemplateDocument(_ context.Context, id uuid.UUID, doc design.Document) (*models.TicketTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Document = doc.Clone()
	t.UpdatedAt = s.now()
	s.templates[id] = t
	out := copyTemplate(t)
	return &out, nil
}

func (s *MemoryStore) DeleteTemplate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return ErrNotFound
	}
	delete(s.templates, id)
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
