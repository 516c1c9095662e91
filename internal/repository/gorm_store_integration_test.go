//go:build integration

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/models"
)

func startPostgresForTest(t *testing.T) *gorm.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "eventpass_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping test because docker/testcontainers is unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s user=postgres password=postgres dbname=eventpass_test port=%s sslmode=disable TimeZone=UTC", host, port.Port())

	var db *gorm.DB
	deadline := time.Now().Add(30 * time.Second)
	for {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.Silent),
		})
		if err == nil {
			sqlDB, _ := db.DB()
			if err = sqlDB.PingContext(ctx); err == nil {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("postgres did not become ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	require.NoError(t, db.AutoMigrate(&models.Event{}, &models.Ticket{}, &models.TicketTemplate{}))
	return db
}

func TestGormStore_RedeemBenefitConcurrently(t *testing.T) {
	s := NewGormStore(startPostgresForTest(t))
	ctx := context.Background()

	event := &models.Event{OrganizerID: "org-1", Title: "Summit", StartDate: time.Now(), EndDate: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateEvent(ctx, event))

	benefits := []string{"Lunch", "WiFi", "Dinner", "Swag", "Parking", "Lounge", "Workshop", "Afterparty"}
	ticket := seedTicket(t, s, event.ID, "482913", benefits...)

	var wg sync.WaitGroup
	errCh := make(chan error, len(benefits)*2)
	for _, b := range benefits {
		// two scanners per benefit: exactly one of each pair may land
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(benefit string) {
				defer wg.Done()
				_, err := s.RedeemBenefit(ctx, ticket.ID, benefit, "482913")
				errCh <- err
			}(b)
		}
	}
	wg.Wait()
	close(errCh)

	var ok, failed int
	for err := range errCh {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrConditionFailed)
		failed++
	}
	assert.Equal(t, len(benefits), ok)
	assert.Equal(t, len(benefits), failed)

	got, err := s.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, benefits, []string(got.UsedBenefits))
	assert.Equal(t, len(benefits), got.TotalBenefitsUsed)
	assert.True(t, got.IsUsed)
}

func TestGormStore_RedeemBenefitConditions(t *testing.T) {
	s := NewGormStore(startPostgresForTest(t))
	ctx := context.Background()
	ticket := seedTicket(t, s, uuid.New(), "482913", "Lunch", "WiFi")

	got, err := s.RedeemBenefit(ctx, ticket.ID, "Lunch", "482913")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lunch"}, []string(got.UsedBenefits))
	assert.Equal(t, 1, got.TotalBenefitsUsed)
	assert.False(t, got.IsUsed)

	for _, tc := range []struct{ benefit, pin string }{
		{"Lunch", "482913"},
		{"WiFi", "000000"},
		{"Spa", "482913"},
	} {
		_, err := s.RedeemBenefit(ctx, ticket.ID, tc.benefit, tc.pin)
		assert.ErrorIs(t, err, ErrConditionFailed, tc.benefit)
	}

	_, err = s.DeactivateTicket(ctx, ticket.ID)
	require.NoError(t, err)
	_, err = s.RedeemBenefit(ctx, ticket.ID, "WiFi", "482913")
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestGormStore_DuplicatePinAndCascade(t *testing.T) {
	s := NewGormStore(startPostgresForTest(t))
	ctx := context.Background()

	event := &models.Event{OrganizerID: "org-1", Title: "Summit", StartDate: time.Now(), EndDate: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateEvent(ctx, event))
	ticket := seedTicket(t, s, event.ID, "111111", "Lunch")

	dup := &models.Ticket{EventID: event.ID, PinCode: "111111", QRPayload: "x", IsActive: true}
	assert.ErrorIs(t, s.InsertTicket(ctx, dup), ErrDuplicate)

	require.NoError(t, s.DeleteEvent(ctx, event.ID))
	_, err := s.GetTicket(ctx, ticket.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_UpdateTicketAndTemplates(t *testing.T) {
	s := NewGormStore(startPostgresForTest(t))
	ctx := context.Background()
	ticket := seedTicket(t, s, uuid.New(), "482913", "Lunch", "WiFi")
	_, err := s.RedeemBenefit(ctx, ticket.ID, "Lunch", "482913")
	require.NoError(t, err)

	_, err = s.UpdateTicket(ctx, ticket.ID, TicketPatch{SelectedBenefits: []string{"WiFi"}})
	assert.ErrorIs(t, err, ErrUsedBenefitRemoved)

	got, err := s.UpdateTicket(ctx, ticket.ID, TicketPatch{SelectedBenefits: []string{"Lunch"}})
	require.NoError(t, err)
	assert.True(t, got.IsUsed)

	tpl := &models.TicketTemplate{OrganizerID: "org-1", Name: "Gold", Category: "vip", Document: design.NewDocument()}
	require.NoError(t, s.InsertTemplate(ctx, tpl))

	doc := design.NewDocument()
	doc.Elements = append(doc.Elements, design.DefaultElement(design.KindQRCode, "el-1"))
	_, err = s.UpdateTemplateDocument(ctx, tpl.ID, doc)
	require.NoError(t, err)

	stored, err := s.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, stored.Document.Elements, 1)
	assert.Equal(t, design.KindQRCode, stored.Document.Elements[0].Kind)

	list, err := s.ListTemplates(ctx, TemplateFilter{OrganizerID: "org-1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
