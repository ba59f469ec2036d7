// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/stakepool/thor"
)

func (n *Node) houseKeeping(ctx context.Context) {
	logger.Debug("enter house keeping")

	var rewardC <-chan time.Time
	if n.opts.RewardInterval > 0 {
		rewardTicker := time.NewTicker(n.opts.RewardInterval)
		defer rewardTicker.Stop()
		rewardC = rewardTicker.C
	}
	clockSyncTicker := time.NewTicker(10 * time.Minute)

	defer func() {
		logger.Debug("leave house keeping")
		clockSyncTicker.Stop()
	}()

	if n.opts.NTPServer != "" {
		go checkClockOffset(n.opts.NTPServer)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-rewardC:
			n.payReward()
		case <-clockSyncTicker.C:
			if n.opts.NTPServer != "" {
				go checkClockOffset(n.opts.NTPServer)
			}
		}
	}
}

// payReward catches up the epoch rewards. Nothing is paid twice for an epoch.
func (n *Node) payReward() {
	before, err := n.pool.EpochIndexOfLastReward()
	if err != nil {
		logger.Warn("failed to read last reward epoch", "err", err)
		return
	}
	if err := n.pool.PayReward(); err != nil {
		metricRewardTriggers().AddWithLabel(1, map[string]string{"status": "failed"})
		logger.Warn("failed to pay reward", "err", err)
		return
	}
	after, err := n.pool.EpochIndexOfLastReward()
	if err != nil {
		logger.Warn("failed to read last reward epoch", "err", err)
		return
	}
	if h := n.opts.Health; h != nil {
		h.RewardChecked(after, n.pool.CurrentEpoch())
	}
	if after == before {
		metricRewardTriggers().AddWithLabel(1, map[string]string{"status": "noop"})
		return
	}
	metricRewardTriggers().AddWithLabel(1, map[string]string{"status": "paid"})
	logger.Info("paid epoch reward", "epoch", after)
}

func checkClockOffset(server string) {
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "server", server, "err", err)
		return
	}
	if resp.ClockOffset > time.Duration(thor.BlockInterval)*time.Second/2 {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}
