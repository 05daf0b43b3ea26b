package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single authorization transaction so a stuck
	// lock wait surfaces as a storage failure instead of hanging the caller.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Authorization outcomes reported to AuthorizationObserver.
const (
	OutcomeAccepted       = "accepted"
	OutcomeRejected       = "rejected_insufficient_rays"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeWalletNotFound = "wallet_not_found"
	OutcomeStorageError   = "storage_unavailable"
)
