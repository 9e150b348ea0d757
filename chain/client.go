package chain

import (
	"context"
	_ "embed"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/megascan/lock-engine/vesting"
)

var (
	//go:embed abi/megalock.json
	megaLockJSON string
	//go:embed abi/megaburn.json
	megaBurnJSON string
	//go:embed abi/erc20.json
	erc20JSON string

	lockABI  = mustParseABI(megaLockJSON)
	burnABI  = mustParseABI(megaBurnJSON)
	erc20ABI = mustParseABI(erc20JSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("chain: invalid embedded ABI: %v", err))
	}
	return parsed
}

// Backend is the subset of JSON-RPC used by Client.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// Client performs read-only calls against the lock, burn and token contracts.
type Client struct {
	backend Backend
	addrs   Addresses
	closer  func()
}

// NewClient wraps an existing backend.
func NewClient(backend Backend, addrs Addresses) *Client {
	return &Client{backend: backend, addrs: addrs}
}

// Dial connects to an RPC endpoint.
func Dial(ctx context.Context, rpcURL string, addrs Addresses) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	c := NewClient(ec, addrs)
	c.closer = ec.Close
	return c, nil
}

// Close releases the RPC connection if Client owns one.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Addresses returns the contract addresses in use.
func (c *Client) Addresses() Addresses {
	return c.addrs
}

// =============================================================================
// MEGALOCK READS
// =============================================================================

// NextLockID returns the id the next created lock will receive.
func (c *Client) NextLockID(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, lockABI, c.addrs.Lock, "nextLockId")
	if err != nil {
		return 0, err
	}
	return toUint64("nextLockId", out[0])
}

// GetLock reads a lock record. Milestones are not loaded.
func (c *Client) GetLock(ctx context.Context, id uint64) (Lock, error) {
	out, err := c.call(ctx, lockABI, c.addrs.Lock, "getLock", new(big.Int).SetUint64(id))
	if err != nil {
		return Lock{}, err
	}
	t := *abi.ConvertType(out[0], new(lockTuple)).(*lockTuple)
	if t.Token == (common.Address{}) {
		return Lock{}, &LockNotFoundError{ID: id}
	}
	return Lock{
		ID:            id,
		Token:         t.Token,
		Creator:       t.Creator,
		Beneficiary:   t.Beneficiary,
		TotalAmount:   bigOrZero(t.TotalAmount),
		ClaimedAmount: bigOrZero(t.ClaimedAmount),
		LockType:      t.LockType,
		StartTime:     t.StartTime,
		CliffTime:     t.CliffTime,
		EndTime:       t.EndTime,
		Cancelable:    t.Cancelable,
		Cancelled:     t.Cancelled,
	}, nil
}

// GetLockWithMilestones reads a lock and, for stepped locks, its milestones.
// A failed milestone read keeps the lock without milestones; its curve then
// falls back to equal steps and is flagged as missing milestones.
func (c *Client) GetLockWithMilestones(ctx context.Context, id uint64) (Lock, error) {
	l, err := c.GetLock(ctx, id)
	if err != nil {
		return Lock{}, err
	}
	if l.Stepped() {
		if ms, err := c.GetMilestones(ctx, id); err == nil {
			l.Milestones = ms
		}
	}
	return l, nil
}

// GetMilestones reads the milestone list of a stepped lock.
func (c *Client) GetMilestones(ctx context.Context, id uint64) ([]vesting.Milestone, error) {
	out, err := c.call(ctx, lockABI, c.addrs.Lock, "getMilestones", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]milestoneTuple)).(*[]milestoneTuple)

	ms := make([]vesting.Milestone, 0, len(raw))
	for _, m := range raw {
		ms = append(ms, vesting.Milestone{
			Timestamp:   clampInt64(m.Timestamp),
			BasisPoints: saturateUint64(m.BasisPoints),
		})
	}
	return ms, nil
}

// VestedAmount asks the contract how much of a lock has vested.
func (c *Client) VestedAmount(ctx context.Context, id uint64) (*big.Int, error) {
	return c.callBig(ctx, lockABI, c.addrs.Lock, "getVestedAmount", new(big.Int).SetUint64(id))
}

// ClaimableAmount asks the contract how much of a lock can be claimed now.
func (c *Client) ClaimableAmount(ctx context.Context, id uint64) (*big.Int, error) {
	return c.callBig(ctx, lockABI, c.addrs.Lock, "getClaimableAmount", new(big.Int).SetUint64(id))
}

// LocksByCreator returns the ids of locks created by addr.
func (c *Client) LocksByCreator(ctx context.Context, addr common.Address) ([]uint64, error) {
	return c.lockIDs(ctx, "getLocksByCreator", addr)
}

// LocksByBeneficiary returns the ids of locks whose tokens go to addr.
func (c *Client) LocksByBeneficiary(ctx context.Context, addr common.Address) ([]uint64, error) {
	return c.lockIDs(ctx, "getLocksByBeneficiary", addr)
}

func (c *Client) lockIDs(ctx context.Context, method string, addr common.Address) ([]uint64, error) {
	out, err := c.call(ctx, lockABI, c.addrs.Lock, method, addr)
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)

	ids := make([]uint64, 0, len(raw))
	for _, v := range raw {
		id, err := toUint64(method, v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// =============================================================================
// MEGABURN READS
// =============================================================================

// TotalBurned returns the amount of token burned through MegaBurn.
func (c *Client) TotalBurned(ctx context.Context, token common.Address) (*big.Int, error) {
	return c.callBig(ctx, burnABI, c.addrs.Burn, "totalBurned", token)
}

// UserBurned returns the amount of token burned by user.
func (c *Client) UserBurned(ctx context.Context, user, token common.Address) (*big.Int, error) {
	return c.callBig(ctx, burnABI, c.addrs.Burn, "userBurned", user, token)
}

// =============================================================================
// ERC-20 READS
// =============================================================================

// TokenMeta reads name, symbol, decimals and total supply.
func (c *Client) TokenMeta(ctx context.Context, token common.Address) (TokenMeta, error) {
	meta := TokenMeta{Address: token}

	out, err := c.call(ctx, erc20ABI, token, "name")
	if err != nil {
		return TokenMeta{}, err
	}
	meta.Name = *abi.ConvertType(out[0], new(string)).(*string)

	out, err = c.call(ctx, erc20ABI, token, "symbol")
	if err != nil {
		return TokenMeta{}, err
	}
	meta.Symbol = *abi.ConvertType(out[0], new(string)).(*string)

	out, err = c.call(ctx, erc20ABI, token, "decimals")
	if err != nil {
		return TokenMeta{}, err
	}
	meta.Decimals = *abi.ConvertType(out[0], new(uint8)).(*uint8)

	meta.TotalSupply, err = c.callBig(ctx, erc20ABI, token, "totalSupply")
	if err != nil {
		return TokenMeta{}, err
	}
	return meta, nil
}

// BalanceOf returns owner's balance of token.
func (c *Client) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return c.callBig(ctx, erc20ABI, token, "balanceOf", owner)
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) call(ctx context.Context, contract abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, &CallError{Method: method, Err: err}
	}
	raw, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, &CallError{Method: method, Err: err}
	}
	out, err := contract.Unpack(method, raw)
	if err != nil {
		return nil, &CallError{Method: method, Err: err}
	}
	if len(out) == 0 {
		return nil, &CallError{Method: method, Err: fmt.Errorf("empty result")}
	}
	return out, nil
}

func (c *Client) callBig(ctx context.Context, contract abi.ABI, to common.Address, method string, args ...interface{}) (*big.Int, error) {
	out, err := c.call(ctx, contract, to, method, args...)
	if err != nil {
		return nil, err
	}
	return bigOrZero(*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)), nil
}

func toUint64(method string, v interface{}) (uint64, error) {
	b := bigOrZero(*abi.ConvertType(v, new(*big.Int)).(**big.Int))
	if !b.IsUint64() {
		return 0, &CallError{Method: method, Err: ErrValueOverflow}
	}
	return b.Uint64(), nil
}

func saturateUint64(v *big.Int) uint64 {
	if v == nil || v.Sign() < 0 {
		return 0
	}
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}

func clampInt64(v uint64) int64 {
	if v > 1<<63-1 {
		return 1<<63 - 1
	}
	return int64(v)
}
