package domain

import "time"

// Event types
const (
	EventTypeComputeAuthorized = "compute.authorized"
	EventTypeComputeRejected   = "compute.rejected"
)

// Aggregate types
const (
	AggregateTypeWallet = "wallet"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewComputeAuthorizationEvent builds the outbox event for a recorded authorization.
func NewComputeAuthorizationEvent(id string, result *AuthorizationResult) *OutboxEvent {
	entry := result.Entry

	eventType := EventTypeComputeRejected
	payload := map[string]any{
		"ledger_entry_id": entry.ID,
		"wallet_id":       entry.WalletID,
		"task_type":       entry.TaskType,
		"rays_spent":      FormatRays(entry.RaysSpent),
		"status":          string(entry.Status),
		"timestamp":       entry.Timestamp.UTC().Format(time.RFC3339Nano),
	}

	if result.Accepted {
		eventType = EventTypeComputeAuthorized
		payload["new_balance"] = FormatRays(result.NewBalance)
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   entry.WalletID,
		AggregateType: AggregateTypeWallet,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     entry.Timestamp,
	}
}
