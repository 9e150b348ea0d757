package locks

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/megascan/lock-engine/chain"
)

// AddressLock is a lock touching an address, tagged with how.
type AddressLock struct {
	chain.Lock
	Created  bool
	Received bool
}

// AddressLocks returns every lock created by or payable to addr, newest id
// first. Ids listed by both roles appear once. Locks that fail to load are
// left out.
func AddressLocks(ctx context.Context, r Reader, addr common.Address) ([]AddressLock, error) {
	created, err := r.LocksByCreator(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to list created locks: %w", err)
	}
	received, err := r.LocksByBeneficiary(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to list received locks: %w", err)
	}

	roles := make(map[uint64]*AddressLock, len(created)+len(received))
	for _, id := range created {
		roles[id] = &AddressLock{Created: true}
	}
	for _, id := range received {
		if al, ok := roles[id]; ok {
			al.Received = true
			continue
		}
		roles[id] = &AddressLock{Received: true}
	}

	ids := make([]uint64, 0, len(roles))
	for id := range roles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	out := make([]AddressLock, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l, err := r.GetLock(ctx, id)
		if err != nil {
			continue
		}
		if l.Stepped() {
			if ms, err := r.GetMilestones(ctx, id); err == nil {
				l.Milestones = ms
			}
		}
		al := roles[id]
		al.Lock = l
		out = append(out, *al)
	}
	return out, nil
}
