// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

// Entry is a journaled pool event with its insertion sequence number.
type Entry struct {
	Seq uint64
	staker.Event
}

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds a query by block number or time, both ends inclusive. To < From leaves it open ended.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects journaled events. Nil fields match everything.
type Filter struct {
	Range *Range
	// Address matches events where it is the user or the counterparty.
	Address *thor.Address
	Kinds   []staker.EventKind
	Order   Order
	Options *Options
}
