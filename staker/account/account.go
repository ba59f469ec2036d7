// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package account

import (
	"math/big"

	"github.com/vechain/stakepool/bn"
	"github.com/vechain/stakepool/staker/stakes"
	"github.com/vechain/stakepool/thor"
)

// UnstakeState is the phase of the single unstake slot of a user.
type UnstakeState uint8

const (
	Idle UnstakeState = iota
	UnstakeScheduled
	UnstakeMatured
	UnstakeExpired
)

func (s UnstakeState) String() string {
	switch s {
	case Idle:
		return "idle"
	case UnstakeScheduled:
		return "scheduled"
	case UnstakeMatured:
		return "matured"
	case UnstakeExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// User is the per address record. A zero record is a user never seen before.
type User struct {
	Unstaked             bn.Int // deposited and withdrawable, not staked
	Vesting              bn.Int // still time locked by vesting deposits
	UnstakeAmount        bn.Int
	UnstakeScheduledFor  uint64
	LastUpdateEpoch      uint64
	OldestLockedEpoch    uint64
	LastDelegationUpdate uint64
	LastProposal         uint64
}

// UnstakeState derives the unstake phase at now.
func (u *User) UnstakeState(now uint64) UnstakeState {
	switch {
	case u.UnstakeScheduledFor == 0:
		return Idle
	case now < u.UnstakeScheduledFor:
		return UnstakeScheduled
	case now < u.UnstakeScheduledFor+thor.UnstakeWindow:
		return UnstakeMatured
	default:
		return UnstakeExpired
	}
}

// ResetUnstake clears the unstake slot.
func (u *User) ResetUnstake() {
	u.UnstakeScheduledFor = 0
	u.UnstakeAmount = bn.Int{}
}

// Timelock is a vesting deposit released linearly between Start and End.
type Timelock struct {
	Total     bn.Int
	Remaining bn.Int
	Start     uint64
	End       uint64
}

// LockedAt returns the amount still locked at now, rounded up.
func (t *Timelock) LockedAt(now uint64) (*big.Int, error) {
	switch {
	case now <= t.Start:
		return t.Total.ToBig(), nil
	case now >= t.End:
		return new(big.Int), nil
	default:
		return stakes.MulDivUp(
			t.Total.ToBig(),
			new(big.Int).SetUint64(t.End-now),
			new(big.Int).SetUint64(t.End-t.Start),
		)
	}
}
