package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewComputeAuthorizationEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	accepted := NewLedgerEntry("W1", "render", decimal.NewFromInt(40), at)
	accepted.ID = 7
	accepted.Accept()

	evt := NewComputeAuthorizationEvent("evt-1", &AuthorizationResult{
		Accepted:   true,
		Entry:      accepted,
		NewBalance: decimal.RequireFromString("60.00"),
	})

	if evt.EventType != EventTypeComputeAuthorized {
		t.Fatalf("expected %s, got %s", EventTypeComputeAuthorized, evt.EventType)
	}
	if evt.AggregateID != "W1" || evt.AggregateType != AggregateTypeWallet {
		t.Fatalf("unexpected aggregate %s/%s", evt.AggregateType, evt.AggregateID)
	}
	if evt.Payload["new_balance"] != "60.00" || evt.Payload["rays_spent"] != "40.00" {
		t.Fatalf("unexpected payload %#v", evt.Payload)
	}

	rejected := NewLedgerEntry("W1", "render", decimal.NewFromInt(75), at)
	rejected.Reject()

	evt = NewComputeAuthorizationEvent("evt-2", &AuthorizationResult{Entry: rejected, Reason: ReasonInsufficientRays})
	if evt.EventType != EventTypeComputeRejected {
		t.Fatalf("expected %s, got %s", EventTypeComputeRejected, evt.EventType)
	}
	if _, ok := evt.Payload["new_balance"]; ok {
		t.Fatal("rejected event must not carry a new balance")
	}
}
