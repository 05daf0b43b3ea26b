package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/computeledger/internal/domain"
)

func TestComputeRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantValid  bool
		wantAmount string
	}{
		{name: "number", body: `{"walletId":"W1","taskType":"render","estimatedRays":40}`, wantValid: true, wantAmount: "40"},
		{name: "fractional number", body: `{"walletId":"W1","taskType":"render","estimatedRays":12.5}`, wantValid: true, wantAmount: "12.5"},
		{name: "numeric string", body: `{"walletId":"W1","taskType":"render","estimatedRays":"7.25"}`, wantValid: true, wantAmount: "7.25"},
		{name: "zero", body: `{"walletId":"W1","taskType":"render","estimatedRays":0}`, wantValid: true, wantAmount: "0"},
		{name: "missing amount", body: `{"walletId":"W1","taskType":"render"}`},
		{name: "null amount", body: `{"walletId":"W1","taskType":"render","estimatedRays":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ComputeRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			got, err := req.ToUseCaseInput()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.WalletID != "W1" || got.TaskType != "render" {
				t.Fatalf("unexpected ids: %+v", got)
			}
			if got.EstimatedRays.Valid != tt.wantValid {
				t.Fatalf("EstimatedRays.Valid = %v, want %v", got.EstimatedRays.Valid, tt.wantValid)
			}
			if tt.wantValid && !got.EstimatedRays.Decimal.Equal(decimal.RequireFromString(tt.wantAmount)) {
				t.Fatalf("EstimatedRays = %s, want %s", got.EstimatedRays.Decimal, tt.wantAmount)
			}
		})
	}
}

func TestComputeRequest_RejectsNonNumericAmount(t *testing.T) {
	var req ComputeRequest
	if err := json.Unmarshal([]byte(`{"estimatedRays":"lots"}`), &req); err == nil {
		t.Fatal("expected non-numeric string to fail decoding")
	}
	if err := json.Unmarshal([]byte(`{"estimatedRays":true}`), &req); err == nil {
		t.Fatal("expected boolean amount to fail decoding")
	}

	req = ComputeRequest{WalletID: "W1", TaskType: "render", EstimatedRays: "lots"}
	if _, err := req.ToUseCaseInput(); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestComputeRequest_ExtremeExponentRejectedQuickly(t *testing.T) {
	bodies := []string{
		`{"walletId":"W1","taskType":"render","estimatedRays":1e30000000}`,
		`{"walletId":"W1","taskType":"render","estimatedRays":1e-30000000}`,
	}

	for _, body := range bodies {
		start := time.Now()

		var req ComputeRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		input, err := req.ToUseCaseInput()
		if err != nil {
			t.Fatalf("convert %s: %v", body, err)
		}
		_, err = domain.ValidateAuthorization(input.WalletID, input.TaskType, input.EstimatedRays)

		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("%s: expected ErrInvalidRequest, got %v", body, err)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Fatalf("%s: rejection took %s", body, elapsed)
		}
	}
}
