// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/vechain/stakepool/metrics"
)

var (
	metricJournaledEvents = metrics.LazyLoadCounterVec("node_journaled_events_count", []string{"status"})
	metricRewardTriggers  = metrics.LazyLoadCounterVec("node_reward_triggers_count", []string{"status"})
)
