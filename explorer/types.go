/*
Package explorer talks to the Blockscout block explorer and the DexScreener
price API, and derives the token and address facts MegaScan displays.

PURPOSE:
  Contract reads (package chain) cannot answer who deployed a token, who
  holds it or what it is worth. Those come from indexers over plain HTTP
  JSON.

KEY CONCEPTS:
  Blockscout v2: REST resources under /api/v2 (tokens, addresses,
                 transactions).
  Blockscout v1: Etherscan-compatible /api?module=account&action=tokentx,
                 used for ERC-20 transfer history.
  DexScreener:   /latest/dex/tokens/{address}; the first pair's USD price is
                 taken as the token price.

  Developer status:
    holding     the deployer still has a balance
    sold        balance is zero but the deployer once received tokens
    never_held  the deployer never received any

SEE ALSO:
  - api/handlers.go: token overview and positions endpoints
*/
package explorer

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BLOCKSCOUT RESOURCES
// =============================================================================

// TokenInfo is the Blockscout v2 token resource.
type TokenInfo struct {
	AddressHash  string  `json:"address_hash,omitempty"`
	Address      string  `json:"address,omitempty"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Decimals     string  `json:"decimals"`
	TotalSupply  string  `json:"total_supply"`
	HoldersCount string  `json:"holders_count"`
	Type         string  `json:"type"`
	ExchangeRate *string `json:"exchange_rate"`
	IconURL      *string `json:"icon_url"`
}

// Hash returns the token address, whichever field the server filled.
func (t TokenInfo) Hash() string {
	if t.AddressHash != "" {
		return t.AddressHash
	}
	return t.Address
}

// DecimalsOr parses Decimals, returning def for missing or zero values.
func (t TokenInfo) DecimalsOr(def uint8) uint8 {
	d, err := strconv.ParseUint(strings.TrimSpace(t.Decimals), 10, 8)
	if err != nil || d == 0 {
		return def
	}
	return uint8(d)
}

// IsERC20 reports whether Blockscout classifies the token as ERC-20.
func (t TokenInfo) IsERC20() bool {
	return t.Type == "ERC-20"
}

// AddressRef is the nested address object Blockscout embeds in resources.
type AddressRef struct {
	Hash string  `json:"hash"`
	Name *string `json:"name"`
}

// Holder is one entry of /tokens/{address}/holders.
type Holder struct {
	Address AddressRef `json:"address"`
	Value   string     `json:"value"`
}

// AddressInfo is the Blockscout v2 address resource.
type AddressInfo struct {
	Hash               string  `json:"hash"`
	IsContract         bool    `json:"is_contract"`
	CreatorAddressHash *string `json:"creator_address_hash"`
}

// TokenBalance is one entry of /addresses/{address}/token-balances.
type TokenBalance struct {
	Token TokenInfo `json:"token"`
	Value string    `json:"value"`
}

// Transfer is one ERC-20 transfer from the v1 tokentx action.
type Transfer struct {
	Hash            string `json:"hash"`
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
}

// ContractRef points at a contract created by a transaction.
type ContractRef struct {
	Hash string `json:"hash"`
}

// Transaction is the subset of the v2 transaction resource we read.
type Transaction struct {
	Hash            string       `json:"hash"`
	From            AddressRef   `json:"from"`
	CreatedContract *ContractRef `json:"created_contract"`
}

// InternalTransaction is one entry of /addresses/{address}/internal-transactions.
type InternalTransaction struct {
	Type            string       `json:"type"`
	CreatedContract *ContractRef `json:"created_contract"`
}

type page[T any] struct {
	Items []T `json:"items"`
}

// =============================================================================
// PRICES
// =============================================================================

// Price is the DexScreener quote of a token.
type Price struct {
	USD            decimal.Decimal
	PriceChange24h *float64
	PairAddress    string
	DexID          string
}

type dexPair struct {
	PairAddress string `json:"pairAddress"`
	DexID       string `json:"dexId"`
	PriceUSD    string `json:"priceUsd"`
	PriceChange struct {
		H24 *float64 `json:"h24"`
	} `json:"priceChange"`
}

type dexTokensResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// parseAmount reads a base-10 integer string, treating junk as zero.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ZeroAddress is the mint source of ERC-20 transfers.
const ZeroAddress = "0x0000000000000000000000000000000000000000"
