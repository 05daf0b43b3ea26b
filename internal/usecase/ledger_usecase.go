package usecase

import (
	"context"

	"github.com/iho/computeledger/internal/domain"
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency reports wallets below zero and ledger rows without a terminal status.
// Both counts are expected to be zero at every commit boundary.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*domain.LedgerConsistency, error) {
	report, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, storageError(err)
	}

	return &report, nil
}
