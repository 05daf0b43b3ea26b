package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/computeledger/internal/adapter/http/dto"
	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	GetWallet(ctx context.Context, id string) (*domain.Wallet, error)
	ListLedgerEntries(ctx context.Context, input usecase.ListLedgerEntriesInput) ([]*domain.LedgerEntry, error)
}

// WalletHandler handles wallet reads and the per-wallet ledger.
type WalletHandler struct {
	walletUC WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// Get retrieves a wallet by ID.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	wallet, err := h.walletUC.GetWallet(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to get wallet")
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// ListLedger lists ledger entries of a wallet, newest first.
func (h *WalletHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))

	entries, err := h.walletUC.ListLedgerEntries(r.Context(), usecase.ListLedgerEntriesInput{
		WalletID: id,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeDomainError(w, err, "failed to list ledger entries")
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerPageResponse{
		WalletID: id,
		Entries:  dto.LedgerEntriesFromDomain(entries),
		Limit:    limit,
		Offset:   offset,
	})
}
