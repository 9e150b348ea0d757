package locks

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	thousandth = decimal.New(1, -3)
	one        = decimal.NewFromInt(1)
	thousand   = decimal.NewFromInt(1_000)
	million    = decimal.NewFromInt(1_000_000)
)

// ToUnits scales a raw amount down by 10^decimals.
func ToUnits(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// FormatTokenAmount renders a raw amount for display:
//
//	0            -> "0"
//	below 0.001  -> "< 0.001"
//	below 1      -> 4 decimals
//	below 1000   -> 2 decimals
//	below 1M     -> thousands with "K"
//	otherwise    -> millions with "M"
func FormatTokenAmount(raw *big.Int, decimals uint8) string {
	n := ToUnits(raw, decimals)
	switch {
	case n.IsZero():
		return "0"
	case n.LessThan(thousandth):
		return "< 0.001"
	case n.LessThan(one):
		return n.StringFixed(4)
	case n.LessThan(thousand):
		return n.StringFixed(2)
	case n.LessThan(million):
		return n.Div(thousand).StringFixed(2) + "K"
	default:
		return n.Div(million).StringFixed(2) + "M"
	}
}

// ShortenAddress keeps the first 6 and last 4 characters.
func ShortenAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
