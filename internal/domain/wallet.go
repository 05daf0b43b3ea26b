package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RaysScale is the number of fractional digits stored for rays and solar balances.
const RaysScale = 2

// Wallet holds the two balances of an account. Only Rays is debited by compute authorizations.
type Wallet struct {
	ID           string
	Solar        decimal.Decimal
	Rays         decimal.Decimal
	LastMintDate *time.Time
	CreatedAt    time.Time
}

// ValidateDebit checks if the wallet holds at least amount rays.
func (w *Wallet) ValidateDebit(amount decimal.Decimal) error {
	if w.Rays.LessThan(amount) {
		return ErrInsufficientRays
	}
	return nil
}

// ApplyDebit returns the rays balance after debiting amount.
func (w *Wallet) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return w.Rays.Sub(amount)
}

// FormatRays renders a balance with the stored precision, e.g. "60.00".
func FormatRays(d decimal.Decimal) string {
	return d.StringFixed(RaysScale)
}
