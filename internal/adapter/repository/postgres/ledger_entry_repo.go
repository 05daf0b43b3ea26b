package postgres

import (
	"context"

	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/infrastructure/postgres/generated"
	"github.com/iho/computeledger/internal/usecase"
)

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct {
	queries *generated.Queries
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(db generated.DBTX) *LedgerEntryRepository {
	return &LedgerEntryRepository{
		queries: generated.New(db),
	}
}

// Create inserts a terminal ledger entry and sets its bigserial ID.
func (r *LedgerEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if err := entry.ValidateForInsert(); err != nil {
		return err
	}

	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	row, err := queries.CreateLedgerEntry(ctx, generated.CreateLedgerEntryParams{
		WalletID:  entry.WalletID,
		TaskType:  entry.TaskType,
		RaysSpent: decimalToNumeric(entry.RaysSpent),
		Status:    string(entry.Status),
		Timestamp: timeToPgTimestamptz(entry.Timestamp),
	})
	if err != nil {
		return err
	}

	entry.ID = row.ID

	return nil
}

// ListByWallet lists entries of a wallet, newest first.
func (r *LedgerEntryRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListLedgerEntriesByWallet(ctx, generated.ListLedgerEntriesByWalletParams{
		WalletID: walletID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToLedgerEntry(row))
	}

	return entries, nil
}

func rowToLedgerEntry(row generated.ComputeLedger) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:        row.ID,
		WalletID:  row.WalletID,
		TaskType:  row.TaskType,
		RaysSpent: numericToDecimal(row.RaysSpent),
		Status:    domain.LedgerStatus(row.Status),
		Timestamp: row.Timestamp.Time,
	}
}
