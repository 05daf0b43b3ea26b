package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/usecase"
	"github.com/iho/computeledger/internal/usecase/mocks"
)

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	tests := []struct {
		name           string
		report         domain.LedgerConsistency
		repoErr        error
		wantConsistent bool
		expectedErr    error
	}{
		{
			name:           "clean ledger",
			report:         domain.LedgerConsistency{TotalEntries: 12},
			wantConsistent: true,
		},
		{
			name:   "negative wallet",
			report: domain.LedgerConsistency{NegativeWallets: 1, TotalEntries: 3},
		},
		{
			name:   "pending entry persisted",
			report: domain.LedgerConsistency{NonTerminalEntries: 2},
		},
		{
			name:        "repo error surfaces",
			repoErr:     errors.New("db down"),
			expectedErr: domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockLedgerRepository(ctrl)
			repo.EXPECT().CheckConsistency(gomock.Any()).Return(tt.report, tt.repoErr)

			report, err := usecase.NewLedgerUseCase(repo).CheckConsistency(context.Background())
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Consistent() != tt.wantConsistent {
				t.Errorf("Consistent() = %v, want %v", report.Consistent(), tt.wantConsistent)
			}
		})
	}
}
