package handler

import (
	"context"
	"net/http"

	"github.com/iho/computeledger/internal/adapter/http/dto"
	"github.com/iho/computeledger/internal/domain"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (*domain.LedgerConsistency, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency reports negative wallets and non-terminal ledger rows.
// An inconsistent ledger answers 409.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to check consistency")
		return
	}

	status := http.StatusOK
	if !report.Consistent() {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto.ConsistencyFromDomain(report))
}
