// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/thor"
)

type Params struct {
	StakeTarget       *math.HexOrDecimal256 `json:"stakeTarget"`
	MinApr            *math.HexOrDecimal256 `json:"minApr"`
	MaxApr            *math.HexOrDecimal256 `json:"maxApr"`
	AprUpdateStep     *math.HexOrDecimal256 `json:"aprUpdateStep"`
	UnstakeWaitPeriod uint64                `json:"unstakeWaitPeriod"`
}

type Summary struct {
	Address         *thor.Address         `json:"address"`
	Admin           *thor.Address         `json:"admin"`
	TotalShares     *math.HexOrDecimal256 `json:"totalShares"`
	TotalStaked     *math.HexOrDecimal256 `json:"totalStaked"`
	CurrentApr      *math.HexOrDecimal256 `json:"currentApr"`
	GenesisEpoch    uint64                `json:"genesisEpoch"`
	LastRewardEpoch uint64                `json:"lastRewardEpoch"`
	Params          *Params               `json:"params"`
}

type Totals struct {
	// Version is omitted for the latest totals.
	Version          uint64                `json:"version,omitempty"`
	TotalShares      *math.HexOrDecimal256 `json:"totalShares"`
	TotalStaked      *math.HexOrDecimal256 `json:"totalStaked"`
	TotalVotingPower *math.HexOrDecimal256 `json:"totalVotingPower"`
}

type Reward struct {
	Epoch   uint64                `json:"epoch"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
	AtBlock uint64                `json:"atBlock"`
	Apr     *math.HexOrDecimal256 `json:"apr"`
}

type PaidReward struct {
	LastRewardEpoch uint64 `json:"lastRewardEpoch"`
}

type ClaimRequest struct {
	Manager   *thor.Address         `json:"manager"`
	Recipient *thor.Address         `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}
