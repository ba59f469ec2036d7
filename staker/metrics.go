// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/staker/reverts"
)

var (
	metricOperations        = metrics.LazyLoadCounterVec("pool_operations_count", []string{"op", "result"})
	metricOperationDuration = metrics.LazyLoadHistogramVec("pool_operation_duration_ms", []string{"op"}, metrics.BucketHTTPReqs)
	metricRewardEpoch       = metrics.LazyLoadGauge("pool_reward_epoch")
	metricCurrentApr        = metrics.LazyLoadGauge("pool_current_apr")
	metricRewardsPaid       = metrics.LazyLoadCounterVec("pool_rewards_count", []string{"minted"})
)

func resultOf(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := reverts.KindOf(err); ok {
		return kind.String()
	}
	return "error"
}

func aprGauge(apr *big.Int) int64 {
	if !apr.IsInt64() {
		return -1
	}
	return apr.Int64()
}
