package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farellandr/eventpass/internal/delivery"
	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/metrics"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/render"
	"github.com/farellandr/eventpass/internal/repository"
)

const (
	defaultQRSize = 256
	maxQRSize     = 2048
)

type ArtifactService struct {
	store     repository.Store
	events    *EventService
	renderer  *render.Renderer
	publisher delivery.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func renderErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, design.ErrInvalidDocument):
		return invalid("document", "%v", err)
	case errors.Is(err, render.ErrMissingQRPayload), errors.Is(err, render.ErrQRTooSmall):
		return invalid("qr_code", "%v", err)
	case errors.Is(err, render.ErrAsset):
		return &BackendError{Op: "fetch asset", Err: err}
	}
	return err
}

func (s *ArtifactService) template(ctx context.Context, actor Actor, id uuid.UUID) (*models.TicketTemplate, error) {
	template, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, storeErr("get template", err)
	}
	if !actor.owns(template.OrganizerID) {
		return nil, ErrForbidden
	}
	return template, nil
}

func (s *ArtifactService) ticket(ctx context.Context, actor Actor, id uuid.UUID) (*models.Ticket, *models.Event, error) {
	ticket, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, nil, storeErr("get ticket", err)
	}
	event, err := s.events.ownedEvent(ctx, actor, ticket.EventID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, event, nil
}

func (s *ArtifactService) render(ctx context.Context, doc design.Document, b render.Bindings, mode render.Mode) ([]byte, error) {
	start := time.Now()
	png, err := s.renderer.RenderPNG(ctx, doc, b, mode)
	metrics.Render(mode.String(), time.Since(start), err)
	if err != nil {
		s.logger.Warn("render failed", zap.String("mode", mode.String()), zap.Error(err))
		return nil, renderErr(err)
	}
	return png, nil
}

// RenderTicket renders a real ticket onto a template.
func (s *ArtifactService) RenderTicket(ctx context.Context, actor Actor, ticketID, templateID uuid.UUID, mode render.Mode) ([]byte, error) {
	ticket, event, err := s.ticket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	template, err := s.template(ctx, actor, templateID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, template.Document, render.TicketBindings(event, ticket, s.now()), mode)
}

// PreviewTemplate renders a template with sample data and a placeholder QR.
func (s *ArtifactService) PreviewTemplate(ctx context.Context, actor Actor, templateID uuid.UUID) ([]byte, error) {
	template, err := s.template(ctx, actor, templateID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, template.Document, render.SampleBindings(s.now()), render.ModePreview)
}

// Deliver renders the final artifact and enqueues it for the holder.
func (s *ArtifactService) Deliver(ctx context.Context, actor Actor, ticketID, templateID uuid.UUID) (*delivery.Artifact, error) {
	ticket, event, err := s.ticket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsActive {
		return nil, ErrTicketClosed
	}
	template, err := s.template(ctx, actor, templateID)
	if err != nil {
		return nil, err
	}
	png, err := s.render(ctx, template.Document, render.TicketBindings(event, ticket, s.now()), render.ModeFinal)
	if err != nil {
		return nil, err
	}

	artifact := delivery.Artifact{
		TicketID:    ticket.ID,
		EventID:     ticket.EventID,
		Recipient:   ticket.HolderEmail,
		HolderName:  ticket.HolderName,
		Filename:    fmt.Sprintf("ticket-%s.png", ticket.ID),
		ContentType: "image/png",
		Image:       png,
	}
	if err := s.publisher.Publish(ctx, artifact); err != nil {
		return nil, &BackendError{Op: "publish artifact", Err: err}
	}
	s.logger.Info("ticket artifact queued",
		zap.String("ticket_id", ticket.ID.String()),
		zap.Int("bytes", len(png)),
	)
	return &artifact, nil
}

// TicketQR returns the bare QR code for a ticket as PNG.
func (s *ArtifactService) TicketQR(ctx context.Context, actor Actor, ticketID uuid.UUID, size int) ([]byte, error) {
	if size == 0 {
		size = defaultQRSize
	}
	if size < 64 || size > maxQRSize {
		return nil, invalid("size", "must be between 64 and %d", maxQRSize)
	}
	ticket, _, err := s.ticket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	png, err := render.QRPNG(ticket.QRPayload, size)
	if err != nil {
		return nil, renderErr(err)
	}
	return png, nil
}
