package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingChannel struct {
	exchange, key string
	msgs          []amqp.Publishing
	err           error
}

func (c *recordingChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key = exchange, key
	c.msgs = append(c.msgs, msg)
	return c.err
}

func artifact() Artifact {
	return Artifact{
		TicketID:    uuid.New(),
		EventID:     uuid.New(),
		Recipient:   "ada@example.com",
		HolderName:  "Ada",
		Filename:    "ticket.png",
		ContentType: "image/png",
		Image:       []byte{0x89, 'P', 'N', 'G'},
	}
}

func TestAMQPPublisher_PublishesToQueue(t *testing.T) {
	ch := &recordingChannel{}
	p := &AMQPPublisher{ch: ch, queue: "ticket.delivery"}
	a := artifact()

	require.NoError(t, p.Publish(context.Background(), a))
	require.Len(t, ch.msgs, 1)
	assert.Equal(t, "", ch.exchange)
	assert.Equal(t, "ticket.delivery", ch.key)

	msg := ch.msgs[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
	assert.Equal(t, a.TicketID.String(), msg.MessageId)

	var got Artifact
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, a, got)
}

func TestAMQPPublisher_SurfacesBrokerErrors(t *testing.T) {
	down := errors.New("channel closed")
	p := &AMQPPublisher{ch: &recordingChannel{err: down}, queue: "q"}
	assert.ErrorIs(t, p.Publish(context.Background(), artifact()), down)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, artifact()), context.Canceled)
}

func TestLogPublisher_OmitsImageAndRecipient(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.Publish(context.Background(), artifact()))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(4), fields["bytes"])
	assert.NotContains(t, fields, "recipient")
}
