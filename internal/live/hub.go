// Package live pushes ticket changes to organizer dashboards over
// websockets, one subscription per event.
package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/farellandr/eventpass/internal/metrics"
	"github.com/farellandr/eventpass/internal/models"
)

const (
	UpdateIssued      = "ticket.issued"
	UpdateRedeemed    = "ticket.redeemed"
	UpdateUpdated     = "ticket.updated"
	UpdateDeactivated = "ticket.deactivated"
	UpdateDeleted     = "ticket.deleted"
)

type Update struct {
	Type              string    `json:"type"`
	EventID           uuid.UUID `json:"eventId"`
	TicketID          uuid.UUID `json:"ticketId"`
	UsedBenefits      []string  `json:"usedBenefits"`
	TotalBenefitsUsed int       `json:"totalBenefitsUsed"`
	IsUsed            bool      `json:"isUsed"`
	IsActive          bool      `json:"isActive"`
	At                time.Time `json:"at"`
}

// TicketUpdate snapshots the redemption fields of t. Holder details and
// credentials stay out of the feed.
func TicketUpdate(kind string, t *models.Ticket, at time.Time) Update {
	used := append([]string{}, t.UsedBenefits...)
	return Update{
		Type:              kind,
		EventID:           t.EventID,
		TicketID:          t.ID,
		UsedBenefits:      used,
		TotalBenefitsUsed: t.TotalBenefitsUsed,
		IsUsed:            t.IsUsed,
		IsActive:          t.IsActive,
		At:                at,
	}
}

type Publisher interface {
	Publish(u Update)
}

type Hub struct {
	mu       sync.RWMutex
	events   map[uuid.UUID]map[*Client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		events: make(map[uuid.UUID]map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Serve upgrades the request and subscribes the connection to eventID
// until either side closes it.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, eventID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(conn, h, eventID)
	h.register(c)
	c.start()
	return nil
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	subs, ok := h.events[c.eventID]
	if !ok {
		subs = make(map[*Client]struct{})
		h.events[c.eventID] = subs
	}
	subs[c] = struct{}{}
	h.mu.Unlock()

	metrics.LiveClientConnected()
	h.logger.Debug("live client connected", zap.String("event_id", c.eventID.String()))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	subs, ok := h.events[c.eventID]
	if ok {
		if _, present := subs[c]; !present {
			ok = false
		}
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.events, c.eventID)
		}
	}
	h.mu.Unlock()

	if ok {
		metrics.LiveClientDisconnected()
		h.logger.Debug("live client disconnected", zap.String("event_id", c.eventID.String()))
	}
}

func (h *Hub) Subscribers(eventID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events[eventID])
}

// Publish never blocks. A client whose buffer is full is disconnected.
func (h *Hub) Publish(u Update) {
	msg, err := json.Marshal(u)
	if err != nil {
		h.logger.Error("encode live update", zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.events[u.EventID] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow live client", zap.String("event_id", u.EventID.String()))
		c.close()
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, subs := range h.events {
		for c := range subs {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.close()
	}
}
