package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventpass/internal/models"
)

func startHub(t *testing.T, eventID uuid.UUID) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(nil, []string{"*"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, eventID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Subscribers(eventID) == 1 }, 2*time.Second, 10*time.Millisecond)
	return hub, conn
}

func TestHub_DeliversOnlyToEventSubscribers(t *testing.T) {
	eventID := uuid.New()
	hub, conn := startHub(t, eventID)

	ticket := &models.Ticket{
		ID:                uuid.New(),
		EventID:           eventID,
		PinCode:           "482913",
		QRPayload:         `{"pinCode":"482913"}`,
		SelectedBenefits:  []string{"Lunch", "WiFi"},
		UsedBenefits:      []string{"Lunch"},
		TotalBenefitsUsed: 1,
		IsActive:          true,
	}
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	hub.Publish(Update{Type: UpdateRedeemed, EventID: uuid.New(), TicketID: uuid.New(), At: at})
	hub.Publish(TicketUpdate(UpdateRedeemed, ticket, at))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Update
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, UpdateRedeemed, got.Type)
	assert.Equal(t, ticket.ID, got.TicketID)
	assert.Equal(t, []string{"Lunch"}, got.UsedBenefits)
	assert.Equal(t, 1, got.TotalBenefitsUsed)
	assert.True(t, got.IsActive)
	assert.NotContains(t, string(raw), "482913")
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	eventID := uuid.New()
	hub, conn := startHub(t, eventID)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers(eventID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	eventID := uuid.New()
	hub, conn := startHub(t, eventID)

	hub.Close()
	assert.Equal(t, 0, hub.Subscribers(eventID))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://dash.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://dash.example.com")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}
