// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds small concurrency helpers shared by the daemon and the API.
package co

import (
	"sync"
)

// Goes tracks a group of go routines, so a service stops only once all its loops returned.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a tracked go routine.
func (g *Goes) Go(f func()) {
	g.wg.Go(f)
}

// Wait blocks until every routine started by Go returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once every routine started so far returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}
