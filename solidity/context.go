// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

// Context binds storage variables to the slots of one ledger account.
type Context struct {
	address thor.Address
	state   *state.State
}

func NewContext(address thor.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
