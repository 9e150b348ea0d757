/*
Package chain reads the MegaLock, MegaBurn and ERC-20 contracts on MegaETH.

PURPOSE:
  The contracts are opaque collaborators: this package only knows their
  addresses and ABIs. Every call is a read (eth_call or eth_getLogs); no
  transaction is ever built or signed here.

KEY CONCEPTS:
  Backend: The two JSON-RPC methods we need. *ethclient.Client satisfies it,
           tests use a fake that answers with ABI-packed outputs.

  Lock:    Decoded getLock tuple plus its id. Amounts stay *big.Int, callers
           convert to decimal at the edge.

  Events:  LockCreated / TokensClaimed / LockCancelled from MegaLock and
           TokensBurned from MegaBurn, decoded into flat structs.

SEE ALSO:
  - locks/: scans and summaries built on this package
  - vesting/record.go: FromLock turns a Lock into a Schedule
*/
package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/megascan/lock-engine/vesting"
)

// MegaETH mainnet.
const (
	ChainID       = 4326
	DefaultRPCURL = "https://mainnet.megaeth.com/rpc"
)

// Addresses of the deployed contracts.
type Addresses struct {
	Lock common.Address
	Burn common.Address
}

// DefaultAddresses returns the mainnet deployment.
func DefaultAddresses() Addresses {
	return Addresses{
		Lock: common.HexToAddress("0x0bEe5fF06bB5CF531f7bc3bbBBD76089838095F7"),
		Burn: common.HexToAddress("0x3D05fC9f25D90745b18c5723CBbDCEC33E821DAB"),
	}
}

// =============================================================================
// LOCKS
// =============================================================================

// Lock is a decoded MegaLock record.
type Lock struct {
	ID            uint64
	Token         common.Address
	Creator       common.Address
	Beneficiary   common.Address
	TotalAmount   *big.Int
	ClaimedAmount *big.Int
	LockType      uint8
	StartTime     uint64
	CliffTime     uint64
	EndTime       uint64
	Cancelable    bool
	Cancelled     bool

	// Milestones is only populated for stepped locks, and only when the
	// caller asked for them.
	Milestones []vesting.Milestone
}

// Remaining returns total - claimed, never negative.
func (l Lock) Remaining() *big.Int {
	total := bigOrZero(l.TotalAmount)
	claimed := bigOrZero(l.ClaimedAmount)
	r := new(big.Int).Sub(total, claimed)
	if r.Sign() < 0 {
		return new(big.Int)
	}
	return r
}

// Schedule converts the lock into a vesting schedule.
func (l Lock) Schedule() (vesting.Schedule, error) {
	return vesting.FromLock(l.LockType, l.StartTime, l.CliffTime, l.EndTime, l.Milestones)
}

// Stepped reports whether the lock unlocks by milestones.
func (l Lock) Stepped() bool {
	return vesting.Kind(l.LockType) == vesting.KindStepped
}

// lockTuple mirrors the getLock output tuple. Field names and order must
// match the ABI components for abi.ConvertType.
type lockTuple struct {
	Token         common.Address
	Creator       common.Address
	Beneficiary   common.Address
	TotalAmount   *big.Int
	ClaimedAmount *big.Int
	LockType      uint8
	StartTime     uint64
	CliffTime     uint64
	EndTime       uint64
	Cancelable    bool
	Cancelled     bool
}

// milestoneTuple mirrors one getMilestones entry.
type milestoneTuple struct {
	Timestamp   uint64
	BasisPoints *big.Int
}

// =============================================================================
// EVENTS
// =============================================================================

// LockEventKind names a MegaLock event.
type LockEventKind string

const (
	EventLockCreated   LockEventKind = "LockCreated"
	EventTokensClaimed LockEventKind = "TokensClaimed"
	EventLockCancelled LockEventKind = "LockCancelled"
)

// LockEvent is a decoded MegaLock log. Fields that the event does not carry
// are left zero.
type LockEvent struct {
	Kind        LockEventKind
	LockID      uint64
	Token       common.Address
	Beneficiary common.Address
	Creator     common.Address
	Amount      *big.Int
	LockType    uint8
	BlockNumber uint64
	TxHash      common.Hash
}

// BurnEvent is a decoded TokensBurned log.
type BurnEvent struct {
	Token       common.Address
	Burner      common.Address
	Amount      *big.Int
	BlockNumber uint64
	TxHash      common.Hash
}

// TokenMeta holds the ERC-20 metadata we display.
type TokenMeta struct {
	Address     common.Address
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
