package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/computeledger/internal/domain"
)

// ComputeUseCase authorizes compute tasks by debiting wallet rays.
type ComputeUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	entryRepo  LedgerEntryRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	observer   AuthorizationObserver
	now        func() time.Time
	txTimeout  time.Duration
}

// ComputeOption configures a ComputeUseCase.
type ComputeOption func(*ComputeUseCase)

// WithObserver reports every authorization outcome to o.
func WithObserver(o AuthorizationObserver) ComputeOption {
	return func(uc *ComputeUseCase) {
		if o != nil {
			uc.observer = o
		}
	}
}

// WithClock overrides the clock used to timestamp ledger entries.
func WithClock(now func() time.Time) ComputeOption {
	return func(uc *ComputeUseCase) {
		uc.now = now
	}
}

// WithTransactionTimeout bounds each authorization transaction.
func WithTransactionTimeout(d time.Duration) ComputeOption {
	return func(uc *ComputeUseCase) {
		if d > 0 {
			uc.txTimeout = d
		}
	}
}

// NewComputeUseCase creates a new ComputeUseCase. outboxRepo may be nil.
func NewComputeUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	entryRepo LedgerEntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...ComputeOption,
) *ComputeUseCase {
	uc := &ComputeUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		observer:   noopObserver{},
		now:        time.Now,
		txTimeout:  DefaultTransactionTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// AuthorizeDebitInput represents input for a compute debit authorization.
type AuthorizeDebitInput struct {
	WalletID      string
	TaskType      string
	EstimatedRays decimal.NullDecimal
}

// AuthorizeDebit checks the wallet balance and either debits it or records a rejection.
// Insufficient rays is not an error: the result carries Accepted=false and the recorded entry.
func (uc *ComputeUseCase) AuthorizeDebit(ctx context.Context, input AuthorizeDebitInput) (*domain.AuthorizationResult, error) {
	start := time.Now()

	amount, err := domain.ValidateAuthorization(input.WalletID, input.TaskType, input.EstimatedRays)
	if err != nil {
		uc.observer.ObserveAuthorization(OutcomeInvalidRequest, decimal.Zero, time.Since(start))
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	walletID := strings.TrimSpace(input.WalletID)
	taskType := strings.TrimSpace(input.TaskType)

	result, err := uc.authorize(ctx, walletID, taskType, amount)
	uc.observer.ObserveAuthorization(outcomeOf(result, err), amount, time.Since(start))

	logger := zerolog.Ctx(ctx)
	switch {
	case err == nil:
		logger.Info().
			Str("wallet_id", walletID).
			Str("task_type", taskType).
			Str("rays", domain.FormatRays(amount)).
			Str("status", string(result.Entry.Status)).
			Int64("entry_id", result.Entry.ID).
			Msg("compute authorization recorded")
	case errors.Is(err, domain.ErrStorageUnavailable):
		logger.Error().Err(err).Str("wallet_id", walletID).Msg("compute authorization failed")
	default:
		logger.Debug().Err(err).Str("wallet_id", walletID).Msg("compute authorization refused")
	}

	return result, err
}

func (uc *ComputeUseCase) authorize(ctx context.Context, walletID, taskType string, amount decimal.Decimal) (*domain.AuthorizationResult, error) {
	// 1. Begin transaction; every exit path below releases it
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// 2. Lock the wallet row until commit
	wallet, err := uc.walletRepo.GetByIDForUpdate(ctx, tx, walletID)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return nil, err
		}
		return nil, storageError(err)
	}

	entry := domain.NewLedgerEntry(wallet.ID, taskType, amount, uc.now().UTC())
	result := &domain.AuthorizationResult{Entry: entry}

	// 3. Decide and debit
	if err := wallet.ValidateDebit(amount); err != nil {
		if !errors.Is(err, domain.ErrInsufficientRays) {
			return nil, err
		}
		entry.Reject()
		result.Reason = domain.ReasonInsufficientRays
	} else {
		newRays := wallet.ApplyDebit(amount)
		if err := uc.walletRepo.UpdateRays(ctx, tx, wallet.ID, newRays); err != nil {
			return nil, storageError(err)
		}
		entry.Accept()
		result.Accepted = true
		result.NewBalance = newRays
	}

	// 4. Record the attempt
	if err := entry.ValidateForInsert(); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, storageError(err)
	}

	if uc.outboxRepo != nil {
		event := domain.NewComputeAuthorizationEvent(uc.idGen.Generate(), result)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, storageError(err)
		}
	}

	// 5. Commit wallet update and ledger entry together
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError(err)
	}

	return result, nil
}

// storageError marks err as a storage fault while keeping the cause in the chain.
func storageError(err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

func outcomeOf(result *domain.AuthorizationResult, err error) string {
	switch {
	case err == nil && result.Accepted:
		return OutcomeAccepted
	case err == nil:
		return OutcomeRejected
	case errors.Is(err, domain.ErrWalletNotFound):
		return OutcomeWalletNotFound
	case errors.Is(err, domain.ErrInvalidRequest):
		return OutcomeInvalidRequest
	default:
		return OutcomeStorageError
	}
}
