package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Default endpoints on MegaETH mainnet.
const (
	DefaultBaseURL  = "https://megaeth.blockscout.com/api/v2"
	DefaultPriceURL = "https://api.dexscreener.com"
	DefaultTimeout  = 15 * time.Second
)

// Config configures a Client. Zero values fall back to the defaults.
type Config struct {
	BaseURL    string
	PriceURL   string
	HTTPClient *http.Client
}

// Client reads Blockscout and DexScreener.
type Client struct {
	base     string
	v1       string
	priceURL string
	http     *http.Client
}

// NewClient creates an explorer client.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	priceURL := strings.TrimRight(cfg.PriceURL, "/")
	if priceURL == "" {
		priceURL = DefaultPriceURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		base:     base,
		v1:       strings.TrimSuffix(base, "/v2"),
		priceURL: priceURL,
		http:     hc,
	}
}

// =============================================================================
// BLOCKSCOUT V2
// =============================================================================

// Token returns the token resource.
func (c *Client) Token(ctx context.Context, address string) (*TokenInfo, error) {
	var t TokenInfo
	if err := c.getJSON(ctx, c.base+"/tokens/"+url.PathEscape(address), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Holders returns the first page of token holders.
func (c *Client) Holders(ctx context.Context, address string) ([]Holder, error) {
	var p page[Holder]
	if err := c.getJSON(ctx, c.base+"/tokens/"+url.PathEscape(address)+"/holders", &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

// Address returns the address resource.
func (c *Client) Address(ctx context.Context, address string) (*AddressInfo, error) {
	var a AddressInfo
	if err := c.getJSON(ctx, c.base+"/addresses/"+url.PathEscape(address), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// TokenBalances returns every token balance of address.
func (c *Client) TokenBalances(ctx context.Context, address string) ([]TokenBalance, error) {
	var out []TokenBalance
	if err := c.getJSON(ctx, c.base+"/addresses/"+url.PathEscape(address)+"/token-balances", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Transaction returns a transaction by hash.
func (c *Client) Transaction(ctx context.Context, hash string) (*Transaction, error) {
	var tx Transaction
	if err := c.getJSON(ctx, c.base+"/transactions/"+url.PathEscape(hash), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// AddressTransactions returns the first page of transactions sent by address.
func (c *Client) AddressTransactions(ctx context.Context, address string) ([]Transaction, error) {
	var p page[Transaction]
	if err := c.getJSON(ctx, c.base+"/addresses/"+url.PathEscape(address)+"/transactions", &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

// InternalTransactions returns the first page of internal transactions
// to or from address.
func (c *Client) InternalTransactions(ctx context.Context, address string) ([]InternalTransaction, error) {
	var p page[InternalTransaction]
	u := c.base + "/addresses/" + url.PathEscape(address) + "/internal-transactions?filter=" + url.QueryEscape("to | from")
	if err := c.getJSON(ctx, u, &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

// =============================================================================
// BLOCKSCOUT V1
// =============================================================================

// TransferQuery selects ERC-20 transfers. Address and Contract are optional
// filters; Offset is the page size.
type TransferQuery struct {
	Address  string
	Contract string
	Page     int
	Offset   int
}

type v1Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// TokenTransfers returns transfers oldest first. An empty history is not an
// error.
func (c *Client) TokenTransfers(ctx context.Context, q TransferQuery) ([]Transfer, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	if q.Address != "" {
		params.Set("address", q.Address)
	}
	if q.Contract != "" {
		params.Set("contractaddress", q.Contract)
	}
	params.Set("sort", "asc")
	pageNo := q.Page
	if pageNo <= 0 {
		pageNo = 1
	}
	offset := q.Offset
	if offset <= 0 {
		offset = 100
	}
	params.Set("page", strconv.Itoa(pageNo))
	params.Set("offset", strconv.Itoa(offset))

	var resp v1Response
	if err := c.getJSON(ctx, c.v1+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	// "No token transfers found" comes back with a non-array result.
	var transfers []Transfer
	if err := json.Unmarshal(resp.Result, &transfers); err != nil {
		return nil, nil
	}
	return transfers, nil
}

// =============================================================================
// DEXSCREENER
// =============================================================================

// Price returns the token's USD price from its first DexScreener pair, or
// nil when no pair quotes it.
func (c *Client) Price(ctx context.Context, token string) (*Price, error) {
	var resp dexTokensResponse
	if err := c.getJSON(ctx, c.priceURL+"/latest/dex/tokens/"+url.PathEscape(token), &resp); err != nil {
		return nil, err
	}
	if len(resp.Pairs) == 0 {
		return nil, nil
	}
	pair := resp.Pairs[0]
	usd := parseAmount(pair.PriceUSD)
	if !usd.IsPositive() {
		return nil, nil
	}
	return &Price{
		USD:            usd,
		PriceChange24h: pair.PriceChange.H24,
		PairAddress:    pair.PairAddress,
		DexID:          pair.DexID,
	}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", u, err)
	}
	return nil
}
