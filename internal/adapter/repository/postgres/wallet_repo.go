package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/infrastructure/postgres/generated"
	"github.com/iho/computeledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{
		queries: generated.New(db),
	}
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByIDForUpdate retrieves a wallet by ID with a FOR UPDATE lock held until tx ends.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetWalletByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// UpdateRays sets the rays balance of a wallet.
func (r *WalletRepository) UpdateRays(ctx context.Context, tx usecase.Transaction, id string, rays decimal.Decimal) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	affected, err := queries.UpdateWalletRays(ctx, generated.UpdateWalletRaysParams{
		ID:   id,
		Rays: decimalToNumeric(rays),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:           row.ID,
		Solar:        numericToDecimal(row.Solar),
		Rays:         numericToDecimal(row.Rays),
		LastMintDate: pgDateToTime(row.LastMintDate),
		CreatedAt:    row.CreatedAt.Time,
	}
}
