// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

type Event struct {
	Seq          uint64                `json:"seq,omitempty"`
	Kind         string                `json:"kind"`
	Block        uint64                `json:"block"`
	Time         uint64                `json:"time"`
	User         *thor.Address         `json:"user,omitempty"`
	Counterparty *thor.Address         `json:"counterparty,omitempty"`
	Amount       *math.HexOrDecimal256 `json:"amount,omitempty"`
	Shares       *math.HexOrDecimal256 `json:"shares,omitempty"`
	Total        *math.HexOrDecimal256 `json:"total,omitempty"`
	Epoch        uint64                `json:"epoch,omitempty"`
	ScheduledFor uint64                `json:"scheduledFor,omitempty"`
	Name         string                `json:"name,omitempty"`
	Value        string                `json:"value,omitempty"`
}

// ConvertEvent converts a pool event for the api, seq is zero for events not read from the journal.
func ConvertEvent(seq uint64, ev *staker.Event) *Event {
	return &Event{
		Seq:          seq,
		Kind:         string(ev.Kind),
		Block:        ev.Block,
		Time:         ev.Time,
		User:         optionalAddress(ev.User),
		Counterparty: optionalAddress(ev.Counterparty),
		Amount:       Amount(ev.Amount),
		Shares:       Amount(ev.Shares),
		Total:        Amount(ev.Total),
		Epoch:        ev.Epoch,
		ScheduledFor: ev.ScheduledFor,
		Name:         ev.Name,
		Value:        ev.Value,
	}
}

// Amount converts a token or share amount, nil stays nil.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func optionalAddress(addr thor.Address) *thor.Address {
	if addr.IsZero() {
		return nil
	}
	return &addr
}
