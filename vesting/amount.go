package vesting

import "github.com/shopspring/decimal"

// =============================================================================
// TOKEN AMOUNTS - Raw integer token units (wei-style), never floats
// =============================================================================

var (
	basisPoints = decimal.NewFromInt(BasisPointsTotal)
	hundred     = decimal.NewFromInt(100)
)

// VestedAmount returns floor(total * fraction). A fraction of 1 returns total
// exactly so a fully vested lock never shows dust.
func VestedAmount(total decimal.Decimal, fraction float64) decimal.Decimal {
	switch {
	case fraction <= 0:
		return decimal.Zero
	case fraction >= 1:
		return total
	}
	return total.Mul(decimal.NewFromFloat(fraction)).Floor()
}

// Claimable returns what the beneficiary could still claim at the given
// unlock fraction, never negative.
func Claimable(total, claimed decimal.Decimal, fraction float64) decimal.Decimal {
	c := VestedAmount(total, fraction).Sub(claimed)
	if c.IsNegative() {
		return decimal.Zero
	}
	return c
}

// Remaining returns the still-locked balance (total - claimed), never negative.
func Remaining(total, claimed decimal.Decimal) decimal.Decimal {
	r := total.Sub(claimed)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// ClaimProgress returns claimed/total as a percentage truncated to two
// decimals. A zero total reports 0.
func ClaimProgress(claimed, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return claimed.Mul(basisPoints).Div(total).Truncate(0).Div(hundred)
}
