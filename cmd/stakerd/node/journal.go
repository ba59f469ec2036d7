// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"

	"github.com/vechain/stakepool/staker"
)

const (
	journalBufferSize = 1024
	maxJournalBatch   = 256
)

// journal writes the events received on ch to the event db, batching whatever is already queued.
func (n *Node) journal(ctx context.Context, ch <-chan *staker.Event, errCh <-chan error) {
	logger.Debug("enter journal")
	defer logger.Debug("leave journal")

	batch := make([]*staker.Event, 0, maxJournalBatch)
	for {
		select {
		case <-ctx.Done():
			// flush what the pool already emitted
			for {
				select {
				case ev := <-ch:
					batch = append(batch, ev)
				default:
					n.writeBatch(context.Background(), batch)
					return
				}
			}
		case err := <-errCh:
			if err != nil {
				logger.Warn("event subscription closed", "err", err)
			}
			return
		case ev := <-ch:
			batch = append(batch[:0], ev)
		drain:
			for len(batch) < maxJournalBatch {
				select {
				case ev := <-ch:
					batch = append(batch, ev)
				default:
					break drain
				}
			}
			n.writeBatch(ctx, batch)
			batch = batch[:0]
		}
	}
}

func (n *Node) writeBatch(ctx context.Context, batch []*staker.Event) {
	if len(batch) == 0 {
		return
	}
	err := n.eventDB.Insert(ctx, batch...)
	if h := n.opts.Health; h != nil {
		h.Journaled(err)
	}
	if err != nil {
		metricJournaledEvents().AddWithLabel(int64(len(batch)), map[string]string{"status": "failed"})
		logger.Error("failed to journal events", "count", len(batch), "err", err)
		return
	}
	metricJournaledEvents().AddWithLabel(int64(len(batch)), map[string]string{"status": "ok"})
	logger.Trace("journaled events", "count", len(batch))
}
