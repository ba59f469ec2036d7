// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math"
	"math/big"
)

// Constants of the staking pool.
const (
	BlockInterval uint64 = 10 // time interval between two consecutive versions, in seconds.

	EpochLength         uint64 = 7 * 24 * 60 * 60 // one week, in seconds.
	RewardVestingPeriod uint64 = 52               // in epochs, rewards unlock linearly over a year.
	UnstakeWindow       uint64 = 2 * EpochLength  // a matured unstake must be executed within this window.

	// MaxUnstakeWaitPeriod keeps now+wait+UnstakeWindow within uint64 for any realistic clock.
	MaxUnstakeWaitPeriod uint64 = math.MaxUint64/2 - UnstakeWindow

	OnePercent     uint64 = 1_000_000
	HundredPercent uint64 = 100 * OnePercent

	// AprUpdateStepDenominator scales the APR update coefficient, 1_000_000 means 1.0.
	AprUpdateStepDenominator uint64 = 1_000_000
)

// Initial values of the pool parameters.
var (
	InitialMinApr            = new(big.Int).SetUint64(2_500_000)  // 2.5%
	InitialMaxApr            = new(big.Int).SetUint64(75_000_000) // 75%
	InitialAprUpdateStep     = new(big.Int).SetUint64(AprUpdateStepDenominator)
	InitialStakeTarget       = new(big.Int).Mul(big.NewInt(10_000_000), big.NewInt(1e18))
	InitialUnstakeWaitPeriod = EpochLength
)
