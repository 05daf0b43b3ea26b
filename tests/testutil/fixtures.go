package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/infrastructure/postgres"
	"github.com/iho/computeledger/internal/infrastructure/postgres/generated"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB migrates and connects to DATABASE_URL. The test is skipped when it is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    dbURL,
		MaxConns:       20,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE outbox_events;
		TRUNCATE TABLE compute_ledger RESTART IDENTITY;
		TRUNCATE TABLE wallets;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestWallet inserts a wallet holding rays and returns it.
func (db *TestDB) CreateTestWallet(ctx context.Context, id string, rays decimal.Decimal) *domain.Wallet {
	db.t.Helper()

	if id == "" {
		id = GenerateID()
	}
	now := time.Now().UTC()

	var numericRays, numericSolar pgtype.Numeric
	_ = numericRays.Scan(rays.StringFixed(domain.RaysScale))
	_ = numericSolar.Scan("0")

	_, err := db.Queries.CreateWallet(ctx, generated.CreateWalletParams{
		ID:        id,
		Solar:     numericSolar,
		Rays:      numericRays,
		CreatedAt: pgtype.Timestamptz{Time: now, Valid: true},
	})
	if err != nil {
		db.t.Fatalf("failed to create test wallet: %v", err)
	}

	return &domain.Wallet{
		ID:        id,
		Solar:     decimal.Zero,
		Rays:      rays,
		CreatedAt: now,
	}
}

// CountLedgerRows counts ledger rows of a wallet.
func (db *TestDB) CountLedgerRows(ctx context.Context, walletID string) int {
	db.t.Helper()

	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM compute_ledger WHERE wallet_id = $1`, walletID).Scan(&n); err != nil {
		db.t.Fatalf("failed to count ledger rows: %v", err)
	}
	return n
}

// CountOutboxEvents counts outbox events of a wallet.
func (db *TestDB) CountOutboxEvents(ctx context.Context, walletID string) int {
	db.t.Helper()

	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_events WHERE aggregate_id = $1`, walletID).Scan(&n); err != nil {
		db.t.Fatalf("failed to count outbox events: %v", err)
	}
	return n
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
