package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iho/computeledger/internal/adapter/repository/postgres"
	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/usecase"
	"github.com/iho/computeledger/tests/testutil"
)

type ledgerEnv struct {
	db      *testutil.TestDB
	compute *usecase.ComputeUseCase
	wallets *usecase.WalletUseCase
	ledger  *usecase.LedgerUseCase
	outbox  *postgres.OutboxRepository
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.NewTestDB(t)
	db.TruncateAll(context.Background())

	pool := db.Pool
	walletRepo := postgres.NewWalletRepository(pool)
	entryRepo := postgres.NewLedgerEntryRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)

	return &ledgerEnv{
		db: db,
		compute: usecase.NewComputeUseCase(
			postgres.NewTxManager(pool), walletRepo, entryRepo, outboxRepo, postgres.NewULIDGenerator(),
		),
		wallets: usecase.NewWalletUseCase(walletRepo, entryRepo),
		ledger:  usecase.NewLedgerUseCase(postgres.NewLedgerRepository(pool)),
		outbox:  outboxRepo,
	}
}

func (e *ledgerEnv) balance(t *testing.T, id string) string {
	t.Helper()
	w, err := e.wallets.GetWallet(context.Background(), id)
	require.NoError(t, err)
	return domain.FormatRays(w.Rays)
}

func (e *ledgerEnv) assertConsistent(t *testing.T) {
	t.Helper()
	report, err := e.ledger.CheckConsistency(context.Background())
	require.NoError(t, err)
	require.True(t, report.Consistent(), "ledger inconsistent: %+v", report)
}
