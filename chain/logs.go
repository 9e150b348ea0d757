package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// BurnLogs returns every TokensBurned event emitted for burner, from block 0.
func (c *Client) BurnLogs(ctx context.Context, burner common.Address) ([]BurnEvent, error) {
	ev := burnABI.Events["TokensBurned"]
	logs, err := c.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int),
		Addresses: []common.Address{c.addrs.Burn},
		Topics:    [][]common.Hash{{ev.ID}, nil, {addressTopic(burner)}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter burn logs: %w", err)
	}

	events := make([]BurnEvent, 0, len(logs))
	for _, lg := range logs {
		if lg.Removed || len(lg.Topics) < 3 || lg.Topics[0] != ev.ID {
			continue
		}
		amount, err := unpackAmount(burnABI, "TokensBurned", lg.Data)
		if err != nil {
			return nil, err
		}
		events = append(events, BurnEvent{
			Token:       common.BytesToAddress(lg.Topics[1].Bytes()),
			Burner:      common.BytesToAddress(lg.Topics[2].Bytes()),
			Amount:      amount,
			BlockNumber: lg.BlockNumber,
			TxHash:      lg.TxHash,
		})
	}
	return events, nil
}

// LockLogs returns the lifecycle events of every lock on token: creation,
// then claims and cancellations of those locks, in log order per query.
func (c *Client) LockLogs(ctx context.Context, token common.Address) ([]LockEvent, error) {
	created := lockABI.Events[string(EventLockCreated)]
	logs, err := c.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int),
		Addresses: []common.Address{c.addrs.Lock},
		Topics:    [][]common.Hash{{created.ID}, nil, {addressTopic(token)}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter lock logs: %w", err)
	}

	var events []LockEvent
	var idTopics []common.Hash
	for _, lg := range logs {
		if lg.Removed || len(lg.Topics) < 4 || lg.Topics[0] != created.ID {
			continue
		}
		ev, err := decodeLockCreated(lg)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
		idTopics = append(idTopics, lg.Topics[1])
	}
	if len(idTopics) == 0 {
		return events, nil
	}

	claimed := lockABI.Events[string(EventTokensClaimed)]
	cancelled := lockABI.Events[string(EventLockCancelled)]
	logs, err = c.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int),
		Addresses: []common.Address{c.addrs.Lock},
		Topics:    [][]common.Hash{{claimed.ID, cancelled.ID}, idTopics},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter lock logs: %w", err)
	}

	for _, lg := range logs {
		if lg.Removed || len(lg.Topics) < 3 {
			continue
		}
		var kind LockEventKind
		switch lg.Topics[0] {
		case claimed.ID:
			kind = EventTokensClaimed
		case cancelled.ID:
			kind = EventLockCancelled
		default:
			continue
		}
		id, err := topicUint64(lg.Topics[1])
		if err != nil {
			return nil, err
		}
		amount, err := unpackAmount(lockABI, string(kind), lg.Data)
		if err != nil {
			return nil, err
		}
		ev := LockEvent{
			Kind:        kind,
			LockID:      id,
			Token:       token,
			Amount:      amount,
			BlockNumber: lg.BlockNumber,
			TxHash:      lg.TxHash,
		}
		if kind == EventTokensClaimed {
			ev.Beneficiary = common.BytesToAddress(lg.Topics[2].Bytes())
		} else {
			ev.Creator = common.BytesToAddress(lg.Topics[2].Bytes())
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeLockCreated(lg types.Log) (LockEvent, error) {
	const name = string(EventLockCreated)
	out, err := lockABI.Unpack(name, lg.Data)
	if err != nil {
		return LockEvent{}, &CallError{Method: name, Err: err}
	}
	if len(out) != 3 {
		return LockEvent{}, &CallError{Method: name, Err: fmt.Errorf("unexpected field count %d", len(out))}
	}
	id, err := topicUint64(lg.Topics[1])
	if err != nil {
		return LockEvent{}, err
	}
	return LockEvent{
		Kind:        EventLockCreated,
		LockID:      id,
		Token:       common.BytesToAddress(lg.Topics[2].Bytes()),
		Beneficiary: common.BytesToAddress(lg.Topics[3].Bytes()),
		Creator:     *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		Amount:      bigOrZero(*abi.ConvertType(out[1], new(*big.Int)).(**big.Int)),
		LockType:    *abi.ConvertType(out[2], new(uint8)).(*uint8),
		BlockNumber: lg.BlockNumber,
		TxHash:      lg.TxHash,
	}, nil
}

func unpackAmount(contract abi.ABI, event string, data []byte) (*big.Int, error) {
	out, err := contract.Unpack(event, data)
	if err != nil {
		return nil, &CallError{Method: event, Err: err}
	}
	if len(out) != 1 {
		return nil, &CallError{Method: event, Err: fmt.Errorf("unexpected field count %d", len(out))}
	}
	return bigOrZero(*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)), nil
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func topicUint64(h common.Hash) (uint64, error) {
	v := new(big.Int).SetBytes(h.Bytes())
	if !v.IsUint64() {
		return 0, ErrValueOverflow
	}
	return v.Uint64(), nil
}
