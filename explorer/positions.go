package explorer

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// MaxPricedPositions caps how many tokens get a price lookup per request.
const MaxPricedPositions = 20

// Position is an ERC-20 holding, priced when a quote exists.
type Position struct {
	Token          string
	Symbol         string
	Name           string
	Decimals       uint8
	Balance        decimal.Decimal
	PriceUSD       *decimal.Decimal
	PriceChange24h *float64
	ValueUSD       *decimal.Decimal
}

// Units returns the balance scaled by decimals.
func (p Position) Units() decimal.Decimal {
	return p.Balance.Shift(-int32(p.Decimals))
}

// Positions lists address's non-zero ERC-20 balances with USD values.
// Prices are looked up concurrently for the first MaxPricedPositions
// tokens; a failed lookup leaves that position unpriced. The result is
// sorted by value, highest first, with unpriced positions last.
func (c *Client) Positions(ctx context.Context, address string) ([]Position, error) {
	balances, err := c.TokenBalances(ctx, address)
	if err != nil {
		return nil, err
	}

	positions := make([]Position, 0, len(balances))
	for _, b := range balances {
		if !b.Token.IsERC20() {
			continue
		}
		bal := parseAmount(b.Value)
		if !bal.IsPositive() {
			continue
		}
		positions = append(positions, Position{
			Token:    b.Token.Hash(),
			Symbol:   orDefault(b.Token.Symbol, "???"),
			Name:     orDefault(b.Token.Name, "Unknown"),
			Decimals: b.Token.DecimalsOr(18),
			Balance:  bal,
		})
	}

	n := len(positions)
	if n > MaxPricedPositions {
		n = MaxPricedPositions
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(p *Position) {
			defer wg.Done()
			price, err := c.Price(ctx, p.Token)
			if err != nil || price == nil {
				return
			}
			usd := price.USD
			value := p.Units().Mul(usd)
			p.PriceUSD = &usd
			p.PriceChange24h = price.PriceChange24h
			p.ValueUSD = &value
		}(&positions[i])
	}
	wg.Wait()

	SortPositions(positions)
	return positions, nil
}

// SortPositions orders by USD value descending, unpriced last. Ties keep
// their input order.
func SortPositions(ps []Position) {
	sort.SliceStable(ps, func(i, j int) bool {
		vi, vj := ps[i].ValueUSD, ps[j].ValueUSD
		switch {
		case vi == nil:
			return false
		case vj == nil:
			return true
		default:
			return vi.GreaterThan(*vj)
		}
	})
}

// TotalValue sums the USD value of priced positions.
func TotalValue(ps []Position) decimal.Decimal {
	total := decimal.Zero
	for _, p := range ps {
		if p.ValueUSD != nil {
			total = total.Add(*p.ValueUSD)
		}
	}
	return total
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
