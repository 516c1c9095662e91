// Package delivery hands rendered ticket artifacts to whatever sends them
// to attendees. Sending email is the consumer's job; this package only
// enqueues.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Artifact is the message body published for each delivered ticket.
type Artifact struct {
	TicketID    uuid.UUID `json:"ticket_id"`
	EventID     uuid.UUID `json:"event_id"`
	Recipient   string    `json:"recipient"`
	HolderName  string    `json:"holder_name"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Image       []byte    `json:"image"`
}

type Publisher interface {
	Publish(ctx context.Context, a Artifact) error
}

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQPPublisher struct {
	ch    channel
	queue string
}

func NewAMQPPublisher(ch *amqp.Channel, queue string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, queue: queue}
}

func (p *AMQPPublisher) Publish(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("delivery: encode artifact: %w", err)
	}
	err = p.ch.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    a.TicketID.String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("delivery: publish to %s: %w", p.queue, err)
	}
	return nil
}

// LogPublisher stands in when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, a Artifact) error {
	p.logger.Info("ticket artifact ready",
		zap.String("ticket_id", a.TicketID.String()),
		zap.String("event_id", a.EventID.String()),
		zap.String("filename", a.Filename),
		zap.Int("bytes", len(a.Image)),
	)
	return nil
}
