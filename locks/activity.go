package locks

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/megascan/lock-engine/chain"
)

// Activity is the event history of a single lock folded into totals.
type Activity struct {
	LockID      uint64
	Token       common.Address
	Creator     common.Address
	Beneficiary common.Address
	LockType    uint8
	Created     *big.Int
	Claimed     *big.Int
	Claims      int
	Cancelled   bool
	Returned    *big.Int
}

// SummarizeActivity folds lock events per lock id, ordered by first
// appearance. Claims or cancellations seen without a creation event still
// get an entry.
func SummarizeActivity(events []chain.LockEvent) []Activity {
	index := make(map[uint64]int)
	var out []Activity

	get := func(ev chain.LockEvent) *Activity {
		i, ok := index[ev.LockID]
		if !ok {
			i = len(out)
			index[ev.LockID] = i
			out = append(out, Activity{
				LockID:   ev.LockID,
				Token:    ev.Token,
				Created:  new(big.Int),
				Claimed:  new(big.Int),
				Returned: new(big.Int),
			})
		}
		return &out[i]
	}

	for _, ev := range events {
		a := get(ev)
		amount := ev.Amount
		if amount == nil {
			amount = new(big.Int)
		}
		switch ev.Kind {
		case chain.EventLockCreated:
			a.Created.Add(a.Created, amount)
			a.Creator = ev.Creator
			a.Beneficiary = ev.Beneficiary
			a.LockType = ev.LockType
		case chain.EventTokensClaimed:
			a.Claimed.Add(a.Claimed, amount)
			a.Claims++
			if a.Beneficiary == (common.Address{}) {
				a.Beneficiary = ev.Beneficiary
			}
		case chain.EventLockCancelled:
			a.Cancelled = true
			a.Returned.Add(a.Returned, amount)
			if a.Creator == (common.Address{}) {
				a.Creator = ev.Creator
			}
		}
	}
	return out
}
