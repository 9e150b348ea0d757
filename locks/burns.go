package locks

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/megascan/lock-engine/chain"
)

// DefaultDecimals is assumed when a token does not report its decimals.
const DefaultDecimals = 18

// BurnReader is the subset of chain reads used by burn summaries.
type BurnReader interface {
	BurnLogs(ctx context.Context, burner common.Address) ([]chain.BurnEvent, error)
	TokenMeta(ctx context.Context, token common.Address) (chain.TokenMeta, error)
}

// TokenBurn is the total an address burned of one token.
type TokenBurn struct {
	Token  common.Address
	Amount *big.Int
	Count  int

	// Symbol and Decimals are filled by BurnSummary. MetaKnown is false when
	// the token could not be read and Decimals holds DefaultDecimals.
	Symbol    string
	Decimals  uint8
	MetaKnown bool
}

// SummarizeBurns sums burn events per token, in order of first appearance.
func SummarizeBurns(events []chain.BurnEvent) []TokenBurn {
	index := make(map[common.Address]int)
	var out []TokenBurn
	for _, ev := range events {
		i, ok := index[ev.Token]
		if !ok {
			i = len(out)
			index[ev.Token] = i
			out = append(out, TokenBurn{Token: ev.Token, Amount: new(big.Int), Decimals: DefaultDecimals})
		}
		if ev.Amount != nil {
			out[i].Amount.Add(out[i].Amount, ev.Amount)
		}
		out[i].Count++
	}
	return out
}

// BurnSummary loads burner's TokensBurned history and resolves token
// symbols. Metadata failures are not fatal.
func BurnSummary(ctx context.Context, r BurnReader, burner common.Address) ([]TokenBurn, error) {
	events, err := r.BurnLogs(ctx, burner)
	if err != nil {
		return nil, fmt.Errorf("failed to load burns: %w", err)
	}

	burns := SummarizeBurns(events)
	for i := range burns {
		meta, err := r.TokenMeta(ctx, burns[i].Token)
		if err != nil {
			continue
		}
		burns[i].Symbol = meta.Symbol
		burns[i].Decimals = meta.Decimals
		burns[i].MetaKnown = true
	}
	return burns, nil
}
