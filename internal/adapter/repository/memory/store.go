// Package memory provides an in-process implementation of the usecase repositories
// for unit and end-to-end tests. No binary wires it in: cmd/server always uses the
// postgres gateway, where row locks come from the database.
// Wallet row locks are held from GetByIDForUpdate until the owning transaction ends,
// mirroring SELECT ... FOR UPDATE under READ COMMITTED within a single process.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/usecase"
)

// Op identifies a store operation for fault injection.
type Op string

const (
	OpBegin        Op = "begin"
	OpGetForUpdate Op = "get_for_update"
	OpUpdateRays   Op = "update_rays"
	OpCreateEntry  Op = "create_entry"
	OpCreateEvent  Op = "create_event"
	OpCommit       Op = "commit"
	OpRead         Op = "read"
)

var (
	ErrTxDone        = errors.New("memory: transaction already closed")
	ErrCheckViolated = errors.New("memory: wallets.rays must be non-negative")
)

// Store holds committed state shared by all repositories built on it.
type Store struct {
	mu          sync.Mutex
	wallets     map[string]domain.Wallet
	locks       map[string]chan struct{}
	entries     []domain.LedgerEntry
	events      []*domain.OutboxEvent
	nextEntryID int64
	faults      map[Op]error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		wallets: make(map[string]domain.Wallet),
		locks:   make(map[string]chan struct{}),
		faults:  make(map[Op]error),
	}
}

// PutWallet inserts or replaces a committed wallet.
func (s *Store) PutWallet(w domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallets[w.ID] = w
}

// SetFault makes op fail with err until cleared with a nil err.
func (s *Store) SetFault(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// Entries returns a snapshot of committed ledger entries in insertion order.
func (s *Store) Entries() []domain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LedgerEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) fault(op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.faults[op]
}

func (s *Store) lockFor(id string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

// Tx stages writes until Commit.
type Tx struct {
	store   *Store
	held    map[string]chan struct{}
	rays    map[string]decimal.Decimal
	entries []domain.LedgerEntry
	events  []*domain.OutboxEvent
	done    bool
}

// Commit applies staged writes atomically and releases held locks.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	defer tx.release()

	if err := tx.store.fault(OpCommit); err != nil {
		return err
	}

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rays := range tx.rays {
		if rays.IsNegative() {
			return ErrCheckViolated
		}
		if _, ok := s.wallets[id]; !ok {
			return domain.ErrWalletNotFound
		}
	}

	for id, rays := range tx.rays {
		w := s.wallets[id]
		w.Rays = rays
		s.wallets[id] = w
	}
	s.entries = append(s.entries, tx.entries...)
	s.events = append(s.events, tx.events...)

	return nil
}

// Rollback discards staged writes. Calling it after Commit is a no-op.
func (tx *Tx) Rollback(ctx context.Context) error {
	if tx.done {
		return nil
	}
	tx.release()
	return nil
}

func (tx *Tx) release() {
	tx.done = true
	for id, ch := range tx.held {
		<-ch
		delete(tx.held, id)
	}
}

func (tx *Tx) lock(ctx context.Context, id string) error {
	if _, ok := tx.held[id]; ok {
		return nil
	}

	ch := tx.store.lockFor(id)
	select {
	case ch <- struct{}{}:
		tx.held[id] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func asTx(t usecase.Transaction) (*Tx, error) {
	tx, ok := t.(*Tx)
	if !ok || tx == nil {
		return nil, errors.New("memory: foreign transaction")
	}
	if tx.done {
		return nil, ErrTxDone
	}
	return tx, nil
}

// TxManager begins memory transactions.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.store.fault(OpBegin); err != nil {
		return nil, err
	}

	return &Tx{
		store: m.store,
		held:  make(map[string]chan struct{}),
		rays:  make(map[string]decimal.Decimal),
	}, nil
}

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	store *Store
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

// GetByID returns the committed wallet.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	if err := r.store.fault(OpRead); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	w, ok := r.store.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &w, nil
}

// GetByIDForUpdate locks the wallet for the rest of tx and returns it with tx's staged changes.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, t usecase.Transaction, id string) (*domain.Wallet, error) {
	tx, err := asTx(t)
	if err != nil {
		return nil, err
	}
	if err := r.store.fault(OpGetForUpdate); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	_, exists := r.store.wallets[id]
	r.store.mu.Unlock()
	if !exists {
		return nil, domain.ErrWalletNotFound
	}

	if err := tx.lock(ctx, id); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	w, ok := r.store.wallets[id]
	r.store.mu.Unlock()
	if !ok {
		return nil, domain.ErrWalletNotFound
	}

	if rays, staged := tx.rays[id]; staged {
		w.Rays = rays
	}
	return &w, nil
}

// UpdateRays stages a new balance for a wallet locked by tx.
func (r *WalletRepository) UpdateRays(ctx context.Context, t usecase.Transaction, id string, rays decimal.Decimal) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}
	if err := r.store.fault(OpUpdateRays); err != nil {
		return err
	}
	if err := tx.lock(ctx, id); err != nil {
		return err
	}

	tx.rays[id] = rays
	return nil
}

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct {
	store *Store
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(store *Store) *LedgerEntryRepository {
	return &LedgerEntryRepository{store: store}
}

// Create stages entry and assigns the next sequence value as its ID.
// Sequence values consumed by rolled-back transactions are not reused.
func (r *LedgerEntryRepository) Create(ctx context.Context, t usecase.Transaction, entry *domain.LedgerEntry) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}
	if err := r.store.fault(OpCreateEntry); err != nil {
		return err
	}
	if err := entry.ValidateForInsert(); err != nil {
		return err
	}

	r.store.mu.Lock()
	r.store.nextEntryID++
	entry.ID = r.store.nextEntryID
	r.store.mu.Unlock()

	tx.entries = append(tx.entries, *entry)
	return nil
}

// ListByWallet returns committed entries of a wallet, newest first.
func (r *LedgerEntryRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	if err := r.store.fault(OpRead); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	var matched []*domain.LedgerEntry
	for i := range r.store.entries {
		if r.store.entries[i].WalletID == walletID {
			e := r.store.entries[i]
			matched = append(matched, &e)
		}
	}
	r.store.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID > matched[j].ID
	})

	if offset >= len(matched) {
		return []*domain.LedgerEntry{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// CheckConsistency counts negative wallets and non-terminal entries.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (domain.LedgerConsistency, error) {
	if err := r.store.fault(OpRead); err != nil {
		return domain.LedgerConsistency{}, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var report domain.LedgerConsistency
	for _, w := range r.store.wallets {
		if w.Rays.IsNegative() {
			report.NegativeWallets++
		}
	}
	for _, e := range r.store.entries {
		if !e.Status.IsTerminal() {
			report.NonTerminalEntries++
		}
	}
	report.TotalEntries = int64(len(r.store.entries))

	return report, nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stages an outbox event.
func (r *OutboxRepository) Create(ctx context.Context, t usecase.Transaction, event *domain.OutboxEvent) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}
	if err := r.store.fault(OpCreateEvent); err != nil {
		return err
	}

	tx.events = append(tx.events, event)
	return nil
}

// GetUnpublished returns up to limit committed events not yet published, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*domain.OutboxEvent
	for _, e := range r.store.events {
		if e.Published {
			continue
		}
		copied := *e
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.events {
		if e.ID == id {
			at := publishedAt
			e.PublishedAt = &at
			e.Published = true
			return nil
		}
	}
	return nil
}
