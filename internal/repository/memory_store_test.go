package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/models"
)

func seedTicket(t *testing.T, s Store, eventID uuid.UUID, pin string, benefits ...string) *models.Ticket {
	t.Helper()
	ticket := &models.Ticket{
		EventID:          eventID,
		HolderName:       "Ada",
		HolderEmail:      "ada@example.com",
		PinCode:          pin,
		QRPayload:        `{"eventId":"` + eventID.String() + `","pinCode":"` + pin + `"}`,
		Role:             models.RoleAttendee,
		SelectedBenefits: benefits,
		IsActive:         true,
	}
	require.NoError(t, s.InsertTicket(context.Background(), ticket))
	return ticket
}

func TestMemoryStore_TicketLookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	eventID := uuid.New()
	ticket := seedTicket(t, s, eventID, "482913", "Lunch")

	got, err := s.GetTicketByPIN(ctx, eventID, "482913")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	got, err = s.GetTicketByQR(ctx, eventID, ticket.QRPayload)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = s.GetTicketByQR(ctx, uuid.New(), ticket.QRPayload)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetTicketByPIN(ctx, eventID, "000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PinUniquePerEvent(t *testing.T) {
	s := NewMemoryStore()
	eventID := uuid.New()
	seedTicket(t, s, eventID, "111111")

	dup := &models.Ticket{EventID: eventID, PinCode: "111111", IsActive: true}
	assert.ErrorIs(t, s.InsertTicket(context.Background(), dup), ErrDuplicate)

	// same pin on another event is fine
	seedTicket(t, s, uuid.New(), "111111")
}

func TestMemoryStore_InsertRecomputesCounters(t *testing.T) {
	s := NewMemoryStore()
	ticket := &models.Ticket{
		EventID:           uuid.New(),
		PinCode:           "222222",
		SelectedBenefits:  []string{"Lunch"},
		UsedBenefits:      []string{"Lunch"},
		TotalBenefitsUsed: 9,
		IsActive:          true,
	}
	require.NoError(t, s.InsertTicket(context.Background(), ticket))

	got, err := s.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalBenefitsUsed)
	assert.True(t, got.IsUsed)
}

func TestMemoryStore_RedeemBenefit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ticket := seedTicket(t, s, uuid.New(), "482913", "Lunch", "WiFi")

	got, err := s.RedeemBenefit(ctx, ticket.ID, "Lunch", "482913")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lunch"}, []string(got.UsedBenefits))
	assert.Equal(t, 1, got.TotalBenefitsUsed)

	_, err = s.RedeemBenefit(ctx, ticket.ID, "Lunch", "482913")
	assert.ErrorIs(t, err, ErrConditionFailed)
	_, err = s.RedeemBenefit(ctx, ticket.ID, "WiFi", "000000")
	assert.ErrorIs(t, err, ErrConditionFailed)
	_, err = s.RedeemBenefit(ctx, uuid.New(), "WiFi", "482913")
	assert.ErrorIs(t, err, ErrConditionFailed)

	got, err = s.RedeemBenefit(ctx, ticket.ID, "WiFi", "482913")
	require.NoError(t, err)
	assert.True(t, got.IsUsed)
	assert.Equal(t, 2, got.TotalBenefitsUsed)
}

func TestMemoryStore_ConcurrentRedemptionOfDistinctBenefits(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	benefits := []string{"Lunch", "WiFi", "Dinner", "Swag", "Parking", "Lounge"}
	ticket := seedTicket(t, s, uuid.New(), "482913", benefits...)

	var wg sync.WaitGroup
	for _, b := range benefits {
		wg.Add(1)
		go func(benefit string) {
			defer wg.Done()
			_, err := s.RedeemBenefit(ctx, ticket.ID, benefit, "482913")
			assert.NoError(t, err)
		}(b)
	}
	wg.Wait()

	got, err := s.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, benefits, []string(got.UsedBenefits))
	assert.Equal(t, len(benefits), got.TotalBenefitsUsed)
	assert.True(t, got.IsUsed)
}

func TestMemoryStore_UpdateTicket(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ticket := seedTicket(t, s, uuid.New(), "482913", "Lunch", "WiFi")
	_, err := s.RedeemBenefit(ctx, ticket.ID, "Lunch", "482913")
	require.NoError(t, err)

	_, err = s.UpdateTicket(ctx, ticket.ID, TicketPatch{SelectedBenefits: []string{"WiFi"}})
	assert.ErrorIs(t, err, ErrUsedBenefitRemoved)

	name := "Grace"
	got, err := s.UpdateTicket(ctx, ticket.ID, TicketPatch{
		HolderName:       &name,
		SelectedBenefits: []string{"Lunch"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.HolderName)
	assert.True(t, got.IsUsed, "dropping the last unused benefit closes the ticket")

	_, err = s.UpdateTicket(ctx, uuid.New(), TicketPatch{HolderName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeactivateKeepsHistory(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ticket := seedTicket(t, s, uuid.New(), "482913", "Lunch", "WiFi")
	_, err := s.RedeemBenefit(ctx, ticket.ID, "Lunch", "482913")
	require.NoError(t, err)

	got, err := s.DeactivateTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, []string{"Lunch"}, []string(got.UsedBenefits))

	_, err = s.RedeemBenefit(ctx, ticket.ID, "WiFi", "482913")
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestMemoryStore_DeleteEventCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	event := &models.Event{OrganizerID: "org-1", Title: "Summit", StartDate: time.Now(), EndDate: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateEvent(ctx, event))
	keep := seedTicket(t, s, uuid.New(), "111111")
	gone := seedTicket(t, s, event.ID, "222222")

	require.NoError(t, s.DeleteEvent(ctx, event.ID))

	_, err := s.GetTicket(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetTicket(ctx, keep.ID)
	assert.NoError(t, err)
	assert.ErrorIs(t, s.DeleteEvent(ctx, event.ID), ErrNotFound)
}

func TestMemoryStore_UpdateEventKeepsOwner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	event := &models.Event{OrganizerID: "org-1", Title: "Summit"}
	require.NoError(t, s.CreateEvent(ctx, event))

	event.OrganizerID = "org-2"
	event.Title = "Summit 2"
	require.NoError(t, s.UpdateEvent(ctx, event))

	got, err := s.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "org-1", got.OrganizerID)
	assert.Equal(t, "Summit 2", got.Title)
}

func TestMemoryStore_Templates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := &models.TicketTemplate{OrganizerID: "org-1", Name: "Gold", Category: "vip", Document: design.NewDocument()}
	b := &models.TicketTemplate{OrganizerID: "org-2", Name: "Plain", Category: "general", Document: design.NewDocument()}
	require.NoError(t, s.InsertTemplate(ctx, a))
	require.NoError(t, s.InsertTemplate(ctx, b))

	list, err := s.ListTemplates(ctx, TemplateFilter{Category: "vip"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	doc := design.NewDocument()
	doc.Elements = append(doc.Elements, design.DefaultElement(design.KindText, "el-1"))
	updated, err := s.UpdateTemplateDocument(ctx, a.ID, doc)
	require.NoError(t, err)
	require.Len(t, updated.Document.Elements, 1)

	// mutating the caller's document must not leak into the store
	doc.Elements[0].Content = "changed"
	got, err := s.GetTemplate(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Text", got.Document.Elements[0].Content)

	require.NoError(t, s.DeleteTemplate(ctx, a.ID))
	_, err = s.GetTemplate(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
