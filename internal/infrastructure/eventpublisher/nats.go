package eventpublisher

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/iho/computeledger/internal/domain"
)

type natsConn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes events on <prefix>.<event type> subjects.
type NATSPublisher struct {
	conn   natsConn
	prefix string
}

// NewNATSPublisher connects to url and returns a publisher.
func NewNATSPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("computeledger-outbox"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return newNATSPublisher(nc, subjectPrefix), nil
}

func newNATSPublisher(conn natsConn, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: subjectPrefix}
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(event *domain.OutboxEvent) string {
	if p.prefix == "" {
		return event.EventType
	}
	return p.prefix + "." + event.EventType
}

// Publish sends the event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.Subject(event), data); err != nil {
		return err
	}

	return p.conn.FlushWithContext(ctx)
}

// Close closes the connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
