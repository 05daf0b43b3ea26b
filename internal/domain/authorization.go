package domain

import "github.com/shopspring/decimal"

// RejectionReason explains why an authorization was not accepted.
type RejectionReason string

// ReasonInsufficientRays is reported when the wallet balance is below the requested amount.
const ReasonInsufficientRays RejectionReason = "insufficient rays"

// AuthorizationResult is the outcome of a recorded authorization attempt.
// NewBalance is set only when Accepted; Reason only when not.
type AuthorizationResult struct {
	Entry      *LedgerEntry
	NewBalance decimal.Decimal
	Reason     RejectionReason
	Accepted   bool
}

// LedgerConsistency summarises ledger-wide invariant checks.
type LedgerConsistency struct {
	NegativeWallets    int64
	NonTerminalEntries int64
	TotalEntries       int64
}

// Consistent reports whether no invariant violation was found.
func (c LedgerConsistency) Consistent() bool {
	return c.NegativeWallets == 0 && c.NonTerminalEntries == 0
}
