package eventpublisher

import (
	"encoding/json"
	"time"

	"github.com/iho/computeledger/internal/domain"
)

// envelope is the wire form shared by every broker publisher.
type envelope struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	CreatedAt     time.Time      `json:"created_at"`
	Payload       map[string]any `json:"payload"`
}

func encodeEvent(event *domain.OutboxEvent) ([]byte, error) {
	return json.Marshal(envelope{
		ID:            event.ID,
		Type:          event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		CreatedAt:     event.CreatedAt.UTC(),
		Payload:       event.Payload,
	})
}
