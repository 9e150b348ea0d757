package locks

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/vesting"
)

// LockView is a lock together with its unlock curve evaluated at a moment.
// Amounts are in raw token units.
type LockView struct {
	Lock      chain.Lock
	Schedule  vesting.Schedule
	Curve     vesting.Curve
	Anomalies []vesting.Anomaly
	At        int64
	Status    vesting.Status
	Fraction  float64
	Vested    decimal.Decimal
	Claimable decimal.Decimal
	Remaining decimal.Decimal
	// Progress is the claimed share of the total, in percent.
	Progress decimal.Decimal
}

// NewLockView evaluates l at unix time now.
func NewLockView(l chain.Lock, now int64) (LockView, error) {
	s, err := l.Schedule()
	if err != nil {
		return LockView{}, err
	}
	curve := vesting.BuildCurve(s)
	fraction := curve.ValueAt(now)

	total := BigToDecimal(l.TotalAmount)
	claimed := BigToDecimal(l.ClaimedAmount)

	return LockView{
		Lock:      l,
		Schedule:  s,
		Curve:     curve,
		Anomalies: vesting.Inspect(s),
		At:        now,
		Status:    curve.Status(now),
		Fraction:  fraction,
		Vested:    vesting.VestedAmount(total, fraction),
		Claimable: vesting.Claimable(total, claimed, fraction),
		Remaining: vesting.Remaining(total, claimed),
		Progress:  vesting.ClaimProgress(claimed, total),
	}, nil
}

// BigToDecimal converts an integer amount, treating nil as zero.
func BigToDecimal(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, 0)
}
