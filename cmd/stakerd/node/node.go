// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node runs the background loops of the pool daemon.
package node

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/stakepool/co"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/staker"
)

var logger = log.WithContext("pkg", "node")

// Options configures the background loops.
type Options struct {
	// RewardInterval triggers PayReward periodically, 0 disables it.
	RewardInterval time.Duration
	// NTPServer is queried for the clock offset, empty disables the check.
	NTPServer string
	// Health receives the outcome of the loops, may be nil.
	Health *health.Health
}

// Node journals pool events and keeps rewards paid.
type Node struct {
	pool    *staker.Pool
	eventDB *eventdb.EventDB
	opts    Options

	events chan *staker.Event
	sub    event.Subscription
}

// New creates a node. With a non nil eventDB, the pool events are queued from now on
// and written once Run starts.
func New(pool *staker.Pool, eventDB *eventdb.EventDB, opts Options) *Node {
	n := &Node{
		pool:    pool,
		eventDB: eventDB,
		opts:    opts,
	}
	if eventDB != nil {
		n.events = make(chan *staker.Event, journalBufferSize)
		n.sub = pool.SubscribeEvents(n.events)
	}
	return n
}

// Run blocks until ctx is done and every loop has returned.
func (n *Node) Run(ctx context.Context) error {
	var goes co.Goes
	if n.sub != nil {
		goes.Go(func() {
			defer n.sub.Unsubscribe()
			n.journal(ctx, n.events, n.sub.Err())
		})
	}
	goes.Go(func() { n.houseKeeping(ctx) })

	logger.Info("node started", "journal", n.sub != nil, "rewardInterval", n.opts.RewardInterval)
	goes.Wait()
	logger.Info("node stopped")
	return nil
}
