package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxWalletIDLength = 255
	MaxTaskTypeLength = 255
	// NUMERIC(20,2) leaves 18 digits before the decimal point.
	MaxRaysIntegerDigits = 18
	// Smallest exponent accepted from input. Comparisons on values outside
	// [minRaysExponent, MaxRaysIntegerDigits] would rescale to a huge coefficient.
	minRaysExponent = -(RaysScale + MaxRaysIntegerDigits)
)

var maxRaysExclusive = decimal.New(1, MaxRaysIntegerDigits)

// ValidateWalletID validates a wallet identifier.
func ValidateWalletID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return fmt.Errorf("%w: walletId is required", ErrInvalidRequest)
	}

	if utf8.RuneCountInString(id) > MaxWalletIDLength {
		return fmt.Errorf("%w: walletId exceeds %d characters", ErrInvalidRequest, MaxWalletIDLength)
	}

	return nil
}

// ValidateTaskType validates the compute task label.
func ValidateTaskType(taskType string) error {
	taskType = strings.TrimSpace(taskType)

	if taskType == "" {
		return fmt.Errorf("%w: taskType is required", ErrInvalidRequest)
	}

	if utf8.RuneCountInString(taskType) > MaxTaskTypeLength {
		return fmt.Errorf("%w: taskType exceeds %d characters", ErrInvalidRequest, MaxTaskTypeLength)
	}

	return nil
}

// ValidateRaysAmount validates a requested rays amount. Zero is a valid no-op debit.
func ValidateRaysAmount(amount decimal.NullDecimal) (decimal.Decimal, error) {
	if !amount.Valid {
		return decimal.Zero, fmt.Errorf("%w: estimatedRays is required", ErrInvalidRequest)
	}

	d := amount.Decimal
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: estimatedRays must not be negative", ErrInvalidRequest)
	}

	if d.IsZero() {
		return decimal.Zero, nil
	}

	// Bound the exponent before any comparison rescales the coefficient.
	if exp := d.Exponent(); exp > MaxRaysIntegerDigits {
		return decimal.Zero, fmt.Errorf("%w: estimatedRays exceeds %d integer digits", ErrInvalidRequest, MaxRaysIntegerDigits)
	} else if exp < minRaysExponent {
		return decimal.Zero, fmt.Errorf("%w: estimatedRays supports at most %d decimal places", ErrInvalidRequest, RaysScale)
	}

	if !d.Equal(d.Truncate(RaysScale)) {
		return decimal.Zero, fmt.Errorf("%w: estimatedRays supports at most %d decimal places", ErrInvalidRequest, RaysScale)
	}

	if d.GreaterThanOrEqual(maxRaysExclusive) {
		return decimal.Zero, fmt.Errorf("%w: estimatedRays exceeds %d integer digits", ErrInvalidRequest, MaxRaysIntegerDigits)
	}

	return d, nil
}

// ValidateAuthorization validates all inputs of a debit authorization and
// returns the amount to debit.
func ValidateAuthorization(walletID, taskType string, estimatedRays decimal.NullDecimal) (decimal.Decimal, error) {
	if err := ValidateWalletID(walletID); err != nil {
		return decimal.Zero, err
	}

	if err := ValidateTaskType(taskType); err != nil {
		return decimal.Zero, err
	}

	return ValidateRaysAmount(estimatedRays)
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
