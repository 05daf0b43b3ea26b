package dto

import (
	"time"

	"github.com/iho/computeledger/internal/domain"
)

// LedgerEntryResponse represents a ledger entry in API responses.
type LedgerEntryResponse struct {
	Timestamp time.Time `json:"timestamp"`
	ID        int64     `json:"id"`
	WalletID  string    `json:"walletId"`
	TaskType  string    `json:"taskType"`
	RaysSpent string    `json:"raysSpent"`
	Status    string    `json:"status"`
}

// LedgerEntryFromDomain converts a domain ledger entry to a response.
func LedgerEntryFromDomain(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:        e.ID,
		WalletID:  e.WalletID,
		TaskType:  e.TaskType,
		RaysSpent: domain.FormatRays(e.RaysSpent),
		Status:    string(e.Status),
		Timestamp: e.Timestamp,
	}
}

// LedgerEntriesFromDomain converts a slice of domain ledger entries.
func LedgerEntriesFromDomain(entries []*domain.LedgerEntry) []LedgerEntryResponse {
	result := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = LedgerEntryFromDomain(e)
	}
	return result
}

// ComputeResponse is returned for every recorded authorization.
// NewBalance is set when accepted; Reason and Error when rejected.
type ComputeResponse struct {
	Entry      LedgerEntryResponse `json:"entry"`
	NewBalance string              `json:"newBalance,omitempty"`
	Reason     string              `json:"reason,omitempty"`
	Error      string              `json:"error,omitempty"`
	Accepted   bool                `json:"accepted"`
}

// ComputeFromDomain converts an authorization result to a response.
func ComputeFromDomain(result *domain.AuthorizationResult) ComputeResponse {
	resp := ComputeResponse{
		Accepted: result.Accepted,
		Entry:    LedgerEntryFromDomain(result.Entry),
	}

	if result.Accepted {
		resp.NewBalance = domain.FormatRays(result.NewBalance)
	} else {
		resp.Reason = string(result.Reason)
		resp.Error = string(result.Reason)
	}

	return resp
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	CreatedAt    time.Time `json:"createdAt"`
	LastMintDate *string   `json:"lastMintDate,omitempty"`
	ID           string    `json:"id"`
	Solar        string    `json:"solar"`
	Rays         string    `json:"rays"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) WalletResponse {
	resp := WalletResponse{
		ID:        w.ID,
		Solar:     domain.FormatRays(w.Solar),
		Rays:      domain.FormatRays(w.Rays),
		CreatedAt: w.CreatedAt,
	}

	if w.LastMintDate != nil {
		d := w.LastMintDate.Format(time.DateOnly)
		resp.LastMintDate = &d
	}

	return resp
}

// LedgerPageResponse is a page of ledger entries for one wallet.
type LedgerPageResponse struct {
	WalletID string                `json:"walletId"`
	Entries  []LedgerEntryResponse `json:"entries"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

// ConsistencyResponse reports the ledger consistency check.
type ConsistencyResponse struct {
	NegativeWallets    int64 `json:"negativeWallets"`
	NonTerminalEntries int64 `json:"nonTerminalEntries"`
	TotalEntries       int64 `json:"totalEntries"`
	Consistent         bool  `json:"consistent"`
}

// ConsistencyFromDomain converts a consistency report to a response.
func ConsistencyFromDomain(c *domain.LedgerConsistency) ConsistencyResponse {
	return ConsistencyResponse{
		NegativeWallets:    c.NegativeWallets,
		NonTerminalEntries: c.NonTerminalEntries,
		TotalEntries:       c.TotalEntries,
		Consistent:         c.Consistent(),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
