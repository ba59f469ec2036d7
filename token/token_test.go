// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

func newToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(thor.Address{0x70}, state.MustNew(db))
}

func requireBalance(t *testing.T, tok *Token, addr thor.Address, want int64) {
	got, err := tok.BalanceOf(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(want).String(), got.String())
}

func TestToken(t *testing.T) {
	tok := newToken(t)
	alice, bob, pool := thor.Address{0xa}, thor.Address{0xb}, thor.Address{0xff}

	require.NoError(t, tok.Allocate(alice, big.NewInt(100)))
	requireBalance(t, tok, alice, 100)

	require.NoError(t, tok.Transfer(alice, bob, big.NewInt(30)))
	requireBalance(t, tok, alice, 70)
	requireBalance(t, tok, bob, 30)
	assert.True(t, reverts.Is(tok.Transfer(bob, alice, big.NewInt(31)), reverts.InvalidValue))

	assert.True(t, reverts.Is(tok.TransferFrom(pool, alice, pool, big.NewInt(1)), reverts.InvalidValue))
	require.NoError(t, tok.Approve(alice, pool, big.NewInt(50)))
	require.NoError(t, tok.TransferFrom(pool, alice, pool, big.NewInt(20)))
	requireBalance(t, tok, pool, 20)
	allowance, err := tok.Allowance(alice, pool)
	require.NoError(t, err)
	assert.Equal(t, "30", allowance.String())

	assert.True(t, reverts.Is(tok.Mint(pool, pool, big.NewInt(5)), reverts.Unauthorized))
	require.NoError(t, tok.SetMinter(pool, true))
	require.NoError(t, tok.Mint(pool, pool, big.NewInt(5)))
	requireBalance(t, tok, pool, 25)

	supply, err := tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, "105", supply.String())

	require.NoError(t, tok.SetMinter(pool, false))
	ok, err := tok.IsMinter(pool)
	require.NoError(t, err)
	assert.False(t, ok)
}
