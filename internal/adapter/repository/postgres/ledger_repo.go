package postgres

import (
	"context"

	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency counts negative wallets and non-terminal ledger rows.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (domain.LedgerConsistency, error) {
	row, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return domain.LedgerConsistency{}, err
	}

	return domain.LedgerConsistency{
		NegativeWallets:    row.NegativeWallets,
		NonTerminalEntries: row.NonTerminalEntries,
		TotalEntries:       row.TotalEntries,
	}, nil
}
