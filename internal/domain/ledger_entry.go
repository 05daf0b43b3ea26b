package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerStatus is the outcome recorded on a ledger entry.
type LedgerStatus string

const (
	LedgerStatusPending                  LedgerStatus = "pending"
	LedgerStatusAccepted                 LedgerStatus = "accepted"
	LedgerStatusRejectedInsufficientRays LedgerStatus = "rejected_insufficient_rays"
)

// IsTerminal reports whether the status may be persisted.
func (s LedgerStatus) IsTerminal() bool {
	return s == LedgerStatusAccepted || s == LedgerStatusRejectedInsufficientRays
}

// LedgerEntry is an append-only record of one compute authorization attempt.
// RaysSpent is the requested amount, recorded even when the attempt is rejected.
type LedgerEntry struct {
	Timestamp time.Time
	ID        int64
	WalletID  string
	TaskType  string
	RaysSpent decimal.Decimal
	Status    LedgerStatus
}

// NewLedgerEntry builds a pending entry. ID is assigned by storage on insert.
func NewLedgerEntry(walletID, taskType string, raysSpent decimal.Decimal, at time.Time) *LedgerEntry {
	return &LedgerEntry{
		WalletID:  walletID,
		TaskType:  taskType,
		RaysSpent: raysSpent,
		Status:    LedgerStatusPending,
		Timestamp: at,
	}
}

// Accept marks the entry as an accepted debit.
func (e *LedgerEntry) Accept() {
	e.Status = LedgerStatusAccepted
}

// Reject marks the entry as rejected for lack of rays.
func (e *LedgerEntry) Reject() {
	e.Status = LedgerStatusRejectedInsufficientRays
}

// ValidateForInsert rejects entries that must never reach the ledger table.
func (e *LedgerEntry) ValidateForInsert() error {
	if !e.Status.IsTerminal() {
		return ErrNonTerminalEntry
	}
	if e.WalletID == "" || e.TaskType == "" {
		return ErrInvalidRequest
	}
	if e.RaysSpent.IsNegative() {
		return ErrInvalidRequest
	}
	return nil
}
