// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"

	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

type Range struct {
	Unit eventdb.RangeType `json:"unit"`
	From *uint64           `json:"from,omitempty"`
	To   *uint64           `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	Address *thor.Address `json:"address"`
	Kinds   []string      `json:"kinds"`
	Range   *Range        `json:"range"`
	Options *Options      `json:"options"`
	Order   eventdb.Order `json:"order"`
}

var knownKinds = map[staker.EventKind]bool{
	staker.EventDeposited:                    true,
	staker.EventWithdrawn:                    true,
	staker.EventStaked:                       true,
	staker.EventScheduledUnstake:             true,
	staker.EventUnstaked:                     true,
	staker.EventDelegated:                    true,
	staker.EventUndelegated:                  true,
	staker.EventPaidReward:                   true,
	staker.EventPaidOutClaim:                 true,
	staker.EventDepositedVesting:             true,
	staker.EventUpdatedTimelock:              true,
	staker.EventParameterUpdated:             true,
	staker.EventRoleUpdated:                  true,
	staker.EventUpdatedLastProposalTimestamp: true,
}

func convertFilter(f *EventFilter) (*eventdb.Filter, error) {
	filter := &eventdb.Filter{
		Address: f.Address,
		Order:   f.Order,
	}
	switch f.Order {
	case "", eventdb.ASC, eventdb.DESC:
	default:
		return nil, fmt.Errorf("order: unknown value %q", f.Order)
	}
	for _, k := range f.Kinds {
		kind := staker.EventKind(k)
		if !knownKinds[kind] {
			return nil, fmt.Errorf("kinds: unknown event kind %q", k)
		}
		filter.Kinds = append(filter.Kinds, kind)
	}
	if f.Range != nil {
		r := &eventdb.Range{Unit: f.Range.Unit, To: math.MaxInt64}
		switch r.Unit {
		case "":
			r.Unit = eventdb.Block
		case eventdb.Block, eventdb.Time:
		default:
			return nil, fmt.Errorf("range.unit: unknown value %q", f.Range.Unit)
		}
		if f.Range.From != nil {
			r.From = *f.Range.From
		}
		if f.Range.To != nil && *f.Range.To < math.MaxInt64 {
			r.To = *f.Range.To
		}
		// sqlite integers are signed
		r.From = min(r.From, math.MaxInt64)
		filter.Range = r
	}
	if f.Options != nil {
		filter.Options = &eventdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit}
	}
	return filter, nil
}
