// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakepool/thor"
)

// EventKind names a pool event.
type EventKind string

const (
	EventDeposited                    EventKind = "Deposited"
	EventWithdrawn                    EventKind = "Withdrawn"
	EventStaked                       EventKind = "Staked"
	EventScheduledUnstake             EventKind = "ScheduledUnstake"
	EventUnstaked                     EventKind = "Unstaked"
	EventDelegated                    EventKind = "Delegated"
	EventUndelegated                  EventKind = "Undelegated"
	EventPaidReward                   EventKind = "PaidReward"
	EventPaidOutClaim                 EventKind = "PaidOutClaim"
	EventDepositedVesting             EventKind = "DepositedVesting"
	EventUpdatedTimelock              EventKind = "UpdatedTimelock"
	EventParameterUpdated             EventKind = "ParameterUpdated"
	EventRoleUpdated                  EventKind = "RoleUpdated"
	EventUpdatedLastProposalTimestamp EventKind = "UpdatedLastProposalTimestamp"
)

// Event is emitted for every committed state change. Fields not relevant to the kind are left zero.
type Event struct {
	Kind  EventKind
	Block uint64
	Time  uint64

	User thor.Address
	// Counterparty is the delegate, claim recipient or vesting source, depending on the kind.
	Counterparty thor.Address

	Amount *big.Int
	Shares *big.Int
	// Total is the pool total after the change: total shares for stakes, total staked otherwise.
	Total *big.Int
	Epoch uint64
	// ScheduledFor is the time an unstake request matures.
	ScheduledFor uint64

	// Name is the parameter or role name.
	Name  string
	Value string
}
