package eventpublisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/computeledger/internal/domain"
)

func sampleEvent() *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            "01HZX",
		AggregateID:   "W1",
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeComputeAuthorized,
		Payload:       map[string]any{"rays_spent": "40.00", "new_balance": "60.00"},
		CreatedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEncodeEvent(t *testing.T) {
	data, err := encodeEvent(sampleEvent())
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "01HZX", env.ID)
	assert.Equal(t, domain.EventTypeComputeAuthorized, env.Type)
	assert.Equal(t, "60.00", env.Payload["new_balance"])
}

func TestToKafkaMessage(t *testing.T) {
	msg, err := toKafkaMessage(sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, []byte("W1"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[1].Key)
	assert.Equal(t, []byte(domain.EventTypeComputeAuthorized), msg.Headers[1].Value)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Len(t, w.msgs, 1)

	w.err = errors.New("leader not available")
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}

type fakeNATS struct {
	subjects []string
	flushErr error
	closed   bool
}

func (c *fakeNATS) Publish(subject string, data []byte) error {
	c.subjects = append(c.subjects, subject)
	return nil
}

func (c *fakeNATS) FlushWithContext(ctx context.Context) error { return c.flushErr }

func (c *fakeNATS) Close() { c.closed = true }

func TestNATSPublisher(t *testing.T) {
	conn := &fakeNATS{}
	p := newNATSPublisher(conn, "computeledger")

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, []string{"computeledger.compute.authorized"}, conn.subjects)

	conn.flushErr = errors.New("timeout")
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))

	require.NoError(t, p.Close())
	assert.True(t, conn.closed)

	assert.Equal(t, "compute.authorized", newNATSPublisher(conn, "").Subject(sampleEvent()))
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), `"event_type":"compute.authorized"`)
	assert.Contains(t, buf.String(), `"new_balance":"60.00"`)
}
