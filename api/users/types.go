// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package users

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/utils/types"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

type User struct {
	Address              *thor.Address         `json:"address"`
	Unstaked             *math.HexOrDecimal256 `json:"unstaked"`
	Shares               *math.HexOrDecimal256 `json:"shares"`
	Stake                *math.HexOrDecimal256 `json:"stake"`
	Locked               *math.HexOrDecimal256 `json:"locked"`
	Vesting              *math.HexOrDecimal256 `json:"vesting"`
	UnstakeAmount        *math.HexOrDecimal256 `json:"unstakeAmount"`
	UnstakeScheduledFor  uint64                `json:"unstakeScheduledFor"`
	UnstakeState         string                `json:"unstakeState"`
	Delegate             *thor.Address         `json:"delegate"`
	ReceivedDelegation   *math.HexOrDecimal256 `json:"receivedDelegation"`
	VotingPower          *math.HexOrDecimal256 `json:"votingPower"`
	LastUpdateEpoch      uint64                `json:"lastUpdateEpoch"`
	LastDelegationUpdate uint64                `json:"lastDelegationUpdate"`
	LastProposal         uint64                `json:"lastProposal"`
}

func convertUser(addr thor.Address, info *staker.UserInfo) *User {
	u := &User{
		Address:              &addr,
		Unstaked:             types.Amount(info.Unstaked),
		Shares:               types.Amount(info.Shares),
		Stake:                types.Amount(info.Stake),
		Locked:               types.Amount(info.Locked),
		Vesting:              types.Amount(info.Vesting),
		UnstakeAmount:        types.Amount(info.UnstakeAmount),
		UnstakeScheduledFor:  info.UnstakeScheduledFor,
		UnstakeState:         info.UnstakeState.String(),
		ReceivedDelegation:   types.Amount(info.ReceivedDelegation),
		VotingPower:          types.Amount(info.VotingPower),
		LastUpdateEpoch:      info.LastUpdateEpoch,
		LastDelegationUpdate: info.LastDelegationUpdate,
		LastProposal:         info.LastProposal,
	}
	if !info.Delegate.IsZero() {
		delegate := info.Delegate
		u.Delegate = &delegate
	}
	return u
}

type VotingPower struct {
	Version     uint64                `json:"version"`
	Shares      *math.HexOrDecimal256 `json:"shares"`
	Delegate    *thor.Address         `json:"delegate"`
	Received    *math.HexOrDecimal256 `json:"received"`
	VotingPower *math.HexOrDecimal256 `json:"votingPower"`
}

type Timelock struct {
	Total     *math.HexOrDecimal256 `json:"total"`
	Remaining *math.HexOrDecimal256 `json:"remaining"`
	Start     uint64                `json:"start"`
	End       uint64                `json:"end"`
}

type AmountRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type DepositRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
	// Stake stakes the deposit in the same operation.
	Stake bool `json:"stake"`
}

type UnstakeRequest struct {
	Withdraw bool `json:"withdraw"`
}

type DelegateRequest struct {
	Delegate *thor.Address `json:"delegate"`
}

type Unstaked struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}
