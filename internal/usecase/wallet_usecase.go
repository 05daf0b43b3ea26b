package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/iho/computeledger/internal/domain"
)

// WalletUseCase exposes read access to wallets and their ledger.
type WalletUseCase struct {
	walletRepo WalletRepository
	entryRepo  LedgerEntryRepository
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(walletRepo WalletRepository, entryRepo LedgerEntryRepository) *WalletUseCase {
	return &WalletUseCase{
		walletRepo: walletRepo,
		entryRepo:  entryRepo,
	}
}

// GetWallet retrieves a wallet by ID.
func (uc *WalletUseCase) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	if err := domain.ValidateWalletID(id); err != nil {
		return nil, err
	}

	wallet, err := uc.walletRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return nil, err
		}
		return nil, storageError(err)
	}

	return wallet, nil
}

// ListLedgerEntriesInput represents input for listing a wallet's ledger.
type ListLedgerEntriesInput struct {
	WalletID string
	Limit    int
	Offset   int
}

// ListLedgerEntries lists ledger entries of a wallet, newest first.
func (uc *WalletUseCase) ListLedgerEntries(ctx context.Context, input ListLedgerEntriesInput) ([]*domain.LedgerEntry, error) {
	if err := domain.ValidateWalletID(input.WalletID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	entries, err := uc.entryRepo.ListByWallet(ctx, strings.TrimSpace(input.WalletID), limit, offset)
	if err != nil {
		return nil, storageError(err)
	}

	return entries, nil
}
