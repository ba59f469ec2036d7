// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"sync"
	"time"

	"github.com/vechain/stakepool/thor"
)

// Clock supplies the time and the checkpoint version of a pool operation.
// Versions returned by successive calls must never decrease.
type Clock interface {
	// Now returns the unix timestamp in seconds.
	Now() uint64
	// Block returns the current version, used to key checkpoints.
	Block() uint64
}

// SystemClock reads the wall clock. The version advances every thor.BlockInterval seconds.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

func (c SystemClock) Block() uint64 {
	return c.Now() / thor.BlockInterval
}

// ManualClock is a clock driven by hand, used by tests and simulations.
type ManualClock struct {
	lock  sync.Mutex
	now   uint64
	block uint64
}

func NewManualClock(now uint64) *ManualClock {
	return &ManualClock{now: now, block: 1}
}

func (c *ManualClock) Now() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *ManualClock) Block() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.block
}

// Advance moves the time forward by seconds and opens a new block.
func (c *ManualClock) Advance(seconds uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now += seconds
	c.block++
}

// Set moves the time to now, which must not be in the past, and opens a new block.
func (c *ManualClock) Set(now uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if now > c.now {
		c.now = now
	}
	c.block++
}

// NextBlock opens a new block without moving the time.
func (c *ManualClock) NextBlock() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.block++
}
