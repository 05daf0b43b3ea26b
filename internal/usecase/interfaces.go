package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/computeledger/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Wallet, error)
	UpdateRays(ctx context.Context, tx Transaction, id string, rays decimal.Decimal) error
}

// LedgerEntryRepository defines data access for compute ledger entries.
type LedgerEntryRepository interface {
	// Create inserts the entry and sets its storage-assigned ID.
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.LedgerEntry, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (domain.LedgerConsistency, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// AuthorizationObserver receives the outcome of every authorization attempt.
type AuthorizationObserver interface {
	ObserveAuthorization(outcome string, amount decimal.Decimal, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveAuthorization(string, decimal.Decimal, time.Duration) {}
