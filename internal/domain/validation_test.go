package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func nullDecimal(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestValidateWalletID(t *testing.T) {
	t.Parallel()

	if err := ValidateWalletID("W1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateWalletID("   "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank id, got %v", err)
	}

	if err := ValidateWalletID(strings.Repeat("w", MaxWalletIDLength+1)); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for long id, got %v", err)
	}
}

func TestValidateTaskType(t *testing.T) {
	t.Parallel()

	if err := ValidateTaskType("render"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateTaskType(""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestValidateRaysAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		amount    decimal.NullDecimal
		wantError bool
	}{
		{name: "integer amount", amount: nullDecimal("40"), wantError: false},
		{name: "two decimals", amount: nullDecimal("0.01"), wantError: false},
		{name: "trailing zero decimals", amount: nullDecimal("12.500"), wantError: false},
		{name: "zero is a valid no-op", amount: nullDecimal("0"), wantError: false},
		{name: "missing", amount: decimal.NullDecimal{}, wantError: true},
		{name: "negative", amount: nullDecimal("-1"), wantError: true},
		{name: "three decimals", amount: nullDecimal("1.001"), wantError: true},
		{name: "largest storable", amount: nullDecimal("999999999999999999.99"), wantError: false},
		{name: "too many integer digits", amount: nullDecimal("1000000000000000000"), wantError: true},
		{name: "exponent form within limits", amount: nullDecimal("125e-1"), wantError: false},
		{name: "huge positive exponent", amount: nullDecimal("1e30000000"), wantError: true},
		{name: "huge negative exponent", amount: nullDecimal("1e-30000000"), wantError: true},
		{name: "more fractional digits than storable", amount: nullDecimal("1.000000000000000000000"), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateRaysAmount(tt.amount)

			if tt.wantError {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.amount.Decimal) {
				t.Fatalf("expected %s, got %s", tt.amount.Decimal, got)
			}
		})
	}
}

func TestValidateRaysAmount_RejectsExtremeExponentsQuickly(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"1e30000000", "1e-30000000", "9e2000000000", "9e-2000000000"} {
		start := time.Now()
		_, err := ValidateRaysAmount(nullDecimal(raw))
		elapsed := time.Since(start)

		if !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("%s: expected ErrInvalidRequest, got %v", raw, err)
		}
		if elapsed > 100*time.Millisecond {
			t.Fatalf("%s: rejection took %s", raw, elapsed)
		}
	}
}

func TestValidateRaysAmount_ZeroWithExponent(t *testing.T) {
	t.Parallel()

	got, err := ValidateRaysAmount(nullDecimal("0e30000000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() || got.Exponent() != 0 {
		t.Fatalf("expected plain zero, got %s", got)
	}
}

func TestValidateIDs_CountCharactersNotBytes(t *testing.T) {
	t.Parallel()

	// "é" is two bytes in UTF-8.
	if err := ValidateWalletID(strings.Repeat("é", MaxWalletIDLength)); err != nil {
		t.Fatalf("expected %d characters to be accepted, got %v", MaxWalletIDLength, err)
	}
	if err := ValidateWalletID(strings.Repeat("é", MaxWalletIDLength+1)); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if err := ValidateTaskType(strings.Repeat("渲", MaxTaskTypeLength)); err != nil {
		t.Fatalf("expected %d characters to be accepted, got %v", MaxTaskTypeLength, err)
	}
	if err := ValidateTaskType(strings.Repeat("渲", MaxTaskTypeLength+1)); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestValidateAuthorization(t *testing.T) {
	t.Parallel()

	amount, err := ValidateAuthorization("W1", "render", nullDecimal("40"))
	if err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if !amount.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected 40, got %s", amount)
	}

	if _, err := ValidateAuthorization("", "render", nullDecimal("40")); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing wallet, got %v", err)
	}

	if _, err := ValidateAuthorization("W1", "", nullDecimal("40")); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing task type, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -5)
	if limit != 20 || offset != 0 {
		t.Fatalf("expected defaults 20/0, got %d/%d", limit, offset)
	}

	limit, _ = ValidatePagination(1000, 0)
	if limit != 100 {
		t.Fatalf("expected limit clamp to 100, got %d", limit)
	}
}
