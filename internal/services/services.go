// Package services orchestrates the domain packages behind the HTTP
// handlers: it checks ownership, validates input, talks to the store and
// publishes side effects (live updates, metrics, deliveries).
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farellandr/eventpass/internal/delivery"
	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/live"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/render"
	"github.com/farellandr/eventpass/internal/repository"
	"github.com/farellandr/eventpass/internal/scan"
)

const (
	RoleAdmin = "admin"

	defaultPinAttempts = 10
)

// Actor is the authenticated caller as asserted by the identity provider.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) owns(organizerID string) bool {
	return a.Role == RoleAdmin || (a.UserID != "" && a.UserID == organizerID)
}

type Options struct {
	Store        repository.Store
	Sessions     scan.SessionStore
	Renderer     *render.Renderer
	Delivery     delivery.Publisher
	Live         live.Publisher
	Logger       *zap.Logger
	Now          func() time.Time
	PinAttempts  int
	HistoryLimit int
}

type Services struct {
	Events    *EventService
	Tickets   *TicketService
	Scans     *ScanService
	Templates *TemplateService
	Artifacts *ArtifactService
}

type nopLive struct{}

func (nopLive) Publish(live.Update) {}

func New(opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.PinAttempts <= 0 {
		opts.PinAttempts = defaultPinAttempts
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = design.DefaultHistoryLimit
	}
	if opts.Live == nil {
		opts.Live = nopLive{}
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer(nil)
	}
	if opts.Delivery == nil {
		opts.Delivery = delivery.NewLogPublisher(opts.Logger)
	}

	events := &EventService{store: opts.Store, logger: opts.Logger.Named("events")}
	tickets := &TicketService{
		store:    opts.Store,
		events:   events,
		live:     opts.Live,
		logger:   opts.Logger.Named("tickets"),
		now:      opts.Now,
		attempts: opts.PinAttempts,
	}
	return &Services{
		Events:  events,
		Tickets: tickets,
		Scans: &ScanService{
			store:    opts.Store,
			sessions: opts.Sessions,
			tickets:  tickets,
			logger:   opts.Logger.Named("scan"),
			now:      opts.Now,
		},
		Templates: &TemplateService{
			store:   opts.Store,
			logger:  opts.Logger.Named("templates"),
			limit:   opts.HistoryLimit,
			editors: map[uuid.UUID]*editorSession{},
		},
		Artifacts: &ArtifactService{
			store:     opts.Store,
			events:    events,
			renderer:  opts.Renderer,
			publisher: opts.Delivery,
			logger:    opts.Logger.Named("artifacts"),
			now:       opts.Now,
		},
	}
}

// ownedEvent loads an event and checks that actor may manage it.
func (s *EventService) ownedEvent(ctx context.Context, actor Actor, id uuid.UUID) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, storeErr("get event", err)
	}
	if !actor.owns(event.OrganizerID) {
		return nil, ErrForbidden
	}
	return event, nil
}
