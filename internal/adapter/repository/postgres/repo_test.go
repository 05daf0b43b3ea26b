package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/usecase"
)

var walletColumns = []string{"id", "solar", "rays", "last_mint_date", "created_at"}

func numeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	require.NoError(t, n.Scan(s))
	return n
}

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBeginTx(readCommitted)
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "40", "60.00", "0.01", "999999999999999999.99"} {
		d := decimal.RequireFromString(s)
		got := numericToDecimal(decimalToNumeric(d))
		assert.True(t, got.Equal(d), "round trip of %s gave %s", s, got)
	}

	assert.True(t, numericToDecimal(pgtype.Numeric{}).IsZero())
}

func TestWalletRepository_GetByID(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE id = $1")).
		WithArgs("W1").
		WillReturnRows(pgxmock.NewRows(walletColumns).AddRow(
			"W1", numeric(t, "5.00"), numeric(t, "100.00"), pgtype.Date{}, pgtype.Timestamptz{Time: created, Valid: true},
		))

	w, err := NewWalletRepository(pool).GetByID(context.Background(), "W1")
	require.NoError(t, err)
	assert.Equal(t, "100.00", domain.FormatRays(w.Rays))
	assert.Equal(t, "5.00", domain.FormatRays(w.Solar))
	assert.Nil(t, w.LastMintDate)
	assert.Equal(t, created, w.CreatedAt)
	assertExpectations(t, pool)
}

func TestWalletRepository_GetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE id = $1")).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewWalletRepository(pool).GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestWalletRepository_LockAndUpdate(t *testing.T) {
	pool := newMockPool(t)
	repo := NewWalletRepository(pool)
	ctx := context.Background()
	tx := beginTx(t, pool)

	pool.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("W1").
		WillReturnRows(pgxmock.NewRows(walletColumns).AddRow(
			"W1", numeric(t, "0"), numeric(t, "100.00"), pgtype.Date{}, pgtype.Timestamptz{Time: time.Now(), Valid: true},
		))
	pool.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET rays = $2 WHERE id = $1")).
		WithArgs("W1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectCommit()

	w, err := repo.GetByIDForUpdate(ctx, tx, "W1")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateRays(ctx, tx, w.ID, w.ApplyDebit(decimal.NewFromInt(40))))
	require.NoError(t, tx.Commit(ctx))
	assertExpectations(t, pool)
}

func TestWalletRepository_UpdateRaysMissingRow(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs("W9", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewWalletRepository(pool).UpdateRays(context.Background(), tx, "W9", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestLedgerEntryRepository_CreateAssignsID(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO compute_ledger")).
		WithArgs("W1", "render", pgxmock.AnyArg(), "accepted", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "wallet_id", "task_type", "rays_spent", "status", "timestamp"}).
			AddRow(int64(42), "W1", "render", numeric(t, "40.00"), "accepted", pgtype.Timestamptz{Time: at, Valid: true}))

	entry := domain.NewLedgerEntry("W1", "render", decimal.NewFromInt(40), at)
	entry.Accept()

	require.NoError(t, NewLedgerEntryRepository(pool).Create(context.Background(), tx, entry))
	assert.Equal(t, int64(42), entry.ID)
	assertExpectations(t, pool)
}

func TestLedgerEntryRepository_CreateRejectsPending(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	entry := domain.NewLedgerEntry("W1", "render", decimal.NewFromInt(1), time.Now())
	err := NewLedgerEntryRepository(pool).Create(context.Background(), tx, entry)
	assert.ErrorIs(t, err, domain.ErrNonTerminalEntry)
}

func TestLedgerEntryRepository_ListByWallet(t *testing.T) {
	pool := newMockPool(t)
	at := time.Now().UTC()

	pool.ExpectQuery(regexp.QuoteMeta("FROM compute_ledger")).
		WithArgs("W1", int32(20), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "wallet_id", "task_type", "rays_spent", "status", "timestamp"}).
			AddRow(int64(2), "W1", "render", numeric(t, "75.00"), "rejected_insufficient_rays", pgtype.Timestamptz{Time: at, Valid: true}).
			AddRow(int64(1), "W1", "render", numeric(t, "40.00"), "accepted", pgtype.Timestamptz{Time: at, Valid: true}))

	entries, err := NewLedgerEntryRepository(pool).ListByWallet(context.Background(), "W1", 20, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.LedgerStatusRejectedInsufficientRays, entries[0].Status)
	assert.Equal(t, "75.00", domain.FormatRays(entries[0].RaysSpent))
}

func TestLedgerRepository_CheckConsistency(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(regexp.QuoteMeta("negative_wallets")).
		WillReturnRows(pgxmock.NewRows([]string{"negative_wallets", "non_terminal_entries", "total_entries"}).
			AddRow(int64(0), int64(0), int64(9)))

	report, err := NewLedgerRepository(pool).CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, int64(9), report.TotalEntries)
}

func TestOutboxRepository_CreateInTx(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("evt-1", "W1", domain.AggregateTypeWallet, domain.EventTypeComputeAuthorized,
			pgxmock.AnyArg(), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := NewOutboxRepository(pool).Create(context.Background(), tx, &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "W1",
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeComputeAuthorized,
		Payload:       map[string]any{"wallet_id": "W1"},
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestOutboxRepository_StorageErrorSurfaces(t *testing.T) {
	pool := newMockPool(t)
	dbErr := errors.New("connection refused")
	pool.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).WithArgs(int32(10)).WillReturnError(dbErr)

	_, err := NewOutboxRepository(pool).GetUnpublished(context.Background(), 10)
	assert.ErrorIs(t, err, dbErr)
}
