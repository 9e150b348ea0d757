package explorer

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// DevStatus classifies what a token's deployer did with their supply.
type DevStatus string

const (
	DevHolding   DevStatus = "holding"
	DevSold      DevStatus = "sold"
	DevNeverHeld DevStatus = "never_held"
)

// DevActivity is the deployer's transfer history of one token, in raw units.
type DevActivity struct {
	Address  string
	Balance  decimal.Decimal
	Received decimal.Decimal
	Sent     decimal.Decimal
	Status   DevStatus
}

// DeveloperActivity totals dev's inbound and outbound transfers and
// classifies the current balance. Address comparison ignores case.
func DeveloperActivity(dev string, balance decimal.Decimal, transfers []Transfer) DevActivity {
	received := decimal.Zero
	sent := decimal.Zero
	for _, t := range transfers {
		v := parseAmount(t.Value)
		if strings.EqualFold(t.To, dev) {
			received = received.Add(v)
		}
		if strings.EqualFold(t.From, dev) {
			sent = sent.Add(v)
		}
	}

	status := DevNeverHeld
	switch {
	case balance.IsPositive():
		status = DevHolding
	case received.IsPositive():
		status = DevSold
	}

	return DevActivity{
		Address:  dev,
		Balance:  balance,
		Received: received,
		Sent:     sent,
		Status:   status,
	}
}

// DeveloperReport describes a token's deployer.
type DeveloperReport struct {
	Deployer string
	Activity *DevActivity
	// TokensCreated counts distinct contracts the deployer created,
	// directly or through internal create/create2 calls.
	TokensCreated *int
}

// FindDeployer returns the address that deployed token, or "" when the
// explorer cannot tell. The creator recorded on the address resource wins;
// otherwise the sender of the first mint transfer is used.
func (c *Client) FindDeployer(ctx context.Context, token string) (string, error) {
	info, err := c.Address(ctx, token)
	if err == nil && info.CreatorAddressHash != nil && *info.CreatorAddressHash != "" {
		return *info.CreatorAddressHash, nil
	}

	transfers, err := c.TokenTransfers(ctx, TransferQuery{Contract: token, Offset: 5})
	if err != nil {
		return "", err
	}
	for _, t := range transfers {
		if t.From != ZeroAddress || t.Hash == "" {
			continue
		}
		tx, err := c.Transaction(ctx, t.Hash)
		if err != nil {
			return "", err
		}
		return tx.From.Hash, nil
	}
	return "", nil
}

// CreatedContracts counts the distinct contracts created by dev.
func (c *Client) CreatedContracts(ctx context.Context, dev string) (int, error) {
	created := make(map[string]struct{})

	txs, err := c.AddressTransactions(ctx, dev)
	if err != nil {
		return 0, err
	}
	for _, tx := range txs {
		if tx.CreatedContract != nil && tx.CreatedContract.Hash != "" {
			created[strings.ToLower(tx.CreatedContract.Hash)] = struct{}{}
		}
	}

	// Factory deployments only show up as internal calls.
	itxs, err := c.InternalTransactions(ctx, dev)
	if err == nil {
		for _, itx := range itxs {
			if (itx.Type == "create" || itx.Type == "create2") && itx.CreatedContract != nil && itx.CreatedContract.Hash != "" {
				created[strings.ToLower(itx.CreatedContract.Hash)] = struct{}{}
			}
		}
	}
	return len(created), nil
}

// Developer builds the deployer report of token. It returns nil when the
// deployer is unknown. Failures past deployer lookup leave the matching
// field nil.
func (c *Client) Developer(ctx context.Context, token string) (*DeveloperReport, error) {
	dev, err := c.FindDeployer(ctx, token)
	if err != nil {
		return nil, err
	}
	if dev == "" {
		return nil, nil
	}
	report := &DeveloperReport{Deployer: dev}

	balance := decimal.Zero
	if balances, err := c.TokenBalances(ctx, dev); err == nil {
		for _, b := range balances {
			if strings.EqualFold(b.Token.Hash(), token) {
				balance = parseAmount(b.Value)
				break
			}
		}
	}

	if transfers, err := c.TokenTransfers(ctx, TransferQuery{Address: dev, Contract: token, Offset: 100}); err == nil {
		activity := DeveloperActivity(dev, balance, transfers)
		report.Activity = &activity
	}

	if n, err := c.CreatedContracts(ctx, dev); err == nil {
		report.TokensCreated = &n
	}
	return report, nil
}
