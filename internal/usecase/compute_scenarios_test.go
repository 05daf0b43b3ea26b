package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/computeledger/internal/adapter/repository/memory"
	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/usecase"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "evt-" + strconv.Itoa(g.n)
}

type ledgerEnv struct {
	store   *memory.Store
	compute *usecase.ComputeUseCase
	wallets *usecase.WalletUseCase
	ledger  *usecase.LedgerUseCase
}

func newLedgerEnv(t *testing.T, wallets ...domain.Wallet) *ledgerEnv {
	t.Helper()
	store := memory.NewStore()
	for _, w := range wallets {
		store.PutWallet(w)
	}

	walletRepo := memory.NewWalletRepository(store)
	entryRepo := memory.NewLedgerEntryRepository(store)

	return &ledgerEnv{
		store: store,
		compute: usecase.NewComputeUseCase(
			memory.NewTxManager(store), walletRepo, entryRepo, memory.NewOutboxRepository(store), &seqIDs{},
		),
		wallets: usecase.NewWalletUseCase(walletRepo, entryRepo),
		ledger:  usecase.NewLedgerUseCase(memory.NewLedgerRepository(store)),
	}
}

func (e *ledgerEnv) balance(t *testing.T, id string) string {
	t.Helper()
	w, err := e.wallets.GetWallet(context.Background(), id)
	require.NoError(t, err)
	return domain.FormatRays(w.Rays)
}

func TestScenario_AcceptedDebit(t *testing.T) {
	env := newLedgerEnv(t, domain.Wallet{ID: "W1", Rays: decimal.RequireFromString("100.00")})

	result, err := env.compute.AuthorizeDebit(context.Background(), input("W1", rays("40.00")))
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, "60.00", domain.FormatRays(result.NewBalance))
	assert.Equal(t, domain.LedgerStatusAccepted, result.Entry.Status)
	assert.Equal(t, "40.00", domain.FormatRays(result.Entry.RaysSpent))
	assert.Equal(t, "60.00", env.balance(t, "W1"))

	entries := env.store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, result.Entry.ID, entries[0].ID)
}

func TestScenario_RejectedDebit(t *testing.T) {
	env := newLedgerEnv(t, domain.Wallet{ID: "W1", Rays: decimal.RequireFromString("60.00")})

	result, err := env.compute.AuthorizeDebit(context.Background(), input("W1", rays("75")))
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, domain.ReasonInsufficientRays, result.Reason)
	assert.Equal(t, domain.LedgerStatusRejectedInsufficientRays, result.Entry.Status)
	assert.Equal(t, "75.00", domain.FormatRays(result.Entry.RaysSpent))
	assert.Equal(t, "60.00", env.balance(t, "W1"))
	assert.Len(t, env.store.Entries(), 1)
}

func TestScenario_UnknownWalletWritesNothing(t *testing.T) {
	env := newLedgerEnv(t)

	_, err := env.compute.AuthorizeDebit(context.Background(), input("ghost-wallet", rays("10")))
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	assert.Empty(t, env.store.Entries())
}

func TestScenario_ExactBalanceAndZeroAmount(t *testing.T) {
	env := newLedgerEnv(t, domain.Wallet{ID: "W1", Rays: decimal.RequireFromString("40.00")})
	ctx := context.Background()

	result, err := env.compute.AuthorizeDebit(ctx, input("W1", rays("40")))
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, "0.00", env.balance(t, "W1"))

	result, err = env.compute.AuthorizeDebit(ctx, input("W1", rays("0")))
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, "0.00", domain.FormatRays(result.NewBalance))

	result, err = env.compute.AuthorizeDebit(ctx, input("W1", rays("0.01")))
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, "0.00", env.balance(t, "W1"))
}

func TestScenario_FaultLeavesNoPartialState(t *testing.T) {
	for _, op := range []memory.Op{memory.OpUpdateRays, memory.OpCreateEntry, memory.OpCreateEvent, memory.OpCommit} {
		t.Run(string(op), func(t *testing.T) {
			env := newLedgerEnv(t, domain.Wallet{ID: "W1", Rays: decimal.RequireFromString("100.00")})
			env.store.SetFault(op, errors.New("injected"))

			_, err := env.compute.AuthorizeDebit(context.Background(), input("W1", rays("40")))
			assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
			assert.Equal(t, "100.00", env.balance(t, "W1"))
			assert.Empty(t, env.store.Entries())

			// The wallet lock was released: a later attempt proceeds.
			env.store.SetFault(op, nil)
			result, err := env.compute.AuthorizeDebit(context.Background(), input("W1", rays("40")))
			require.NoError(t, err)
			assert.True(t, result.Accepted)
		})
	}
}

func TestScenario_ConcurrentDebitsNeverOverspend(t *testing.T) {
	env := newLedgerEnv(t, domain.Wallet{ID: "W1", Rays: decimal.RequireFromString("100.00")})

	const workers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := env.compute.AuthorizeDebit(context.Background(), input("W1", rays("15.00")))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if result.Accepted {
				accepted++
			} else {
				rejected++
			}
		}()
	}
	wg.Wait()

	// 100 / 15 leaves room for six debits.
	assert.Equal(t, 6, accepted)
	assert.Equal(t, workers-6, rejected)
	assert.Equal(t, "10.00", env.balance(t, "W1"))

	entries := env.store.Entries()
	require.Len(t, entries, workers)
	spent := decimal.Zero
	ids := make(map[int64]bool, len(entries))
	for _, e := range entries {
		assert.True(t, e.Status.IsTerminal())
		assert.False(t, ids[e.ID], "duplicate entry id %d", e.ID)
		ids[e.ID] = true
		if e.Status == domain.LedgerStatusAccepted {
			spent = spent.Add(e.RaysSpent)
		}
	}
	assert.Equal(t, "90.00", domain.FormatRays(spent))

	report, err := env.ledger.CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, int64(workers), report.TotalEntries)
}

func TestScenario_ReadsDoNotMutate(t *testing.T) {
	env := newLedgerEnv(t, domain.Wallet{ID: "W1", Rays: decimal.RequireFromString("12.50")})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Equal(t, "12.50", env.balance(t, "W1"))
		entries, err := env.wallets.ListLedgerEntries(ctx, usecase.ListLedgerEntriesInput{WalletID: "W1"})
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
	assert.Empty(t, env.store.Entries())
}

func TestScenario_TwoConcurrentDebitsOnlyOneWins(t *testing.T) {
	env := newLedgerEnv(t, domain.Wallet{ID: "W1", Rays: decimal.RequireFromString("100.00")})

	results := make(chan *domain.AuthorizationResult, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := env.compute.AuthorizeDebit(context.Background(), input("W1", rays("60")))
			if assert.NoError(t, err) {
				results <- result
			}
		}()
	}
	wg.Wait()
	close(results)

	var accepted, rejected int
	for r := range results {
		if r.Accepted {
			accepted++
			assert.Equal(t, "40.00", domain.FormatRays(r.NewBalance))
		} else {
			rejected++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, "40.00", env.balance(t, "W1"))
}
