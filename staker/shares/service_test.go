// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shares

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var (
	pool  = thor.Address{0xff}
	alice = thor.Address{0xa}
	bob   = thor.Address{0xb}
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := New(solidity.NewContext(thor.Address{1}, state.MustNew(db)))
	require.NoError(t, s.Init(pool, 1))
	return s
}

func requireTotals(t *testing.T, s *Service, shares, staked int64) {
	ts, tk, err := s.Totals()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(shares).String(), ts.String(), "total shares")
	assert.Equal(t, big.NewInt(staked).String(), tk.String(), "total staked")
}

func requireShares(t *testing.T, s *Service, user thor.Address, want int64) {
	got, err := s.SharesOf(user)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(want).String(), got.String())
}

func TestStakeAndUnstake(t *testing.T) {
	s := newService(t)
	requireTotals(t, s, 1, 1)
	requireShares(t, s, pool, 1)

	minted, err := s.Stake(alice, big.NewInt(60), 2)
	require.NoError(t, err)
	assert.Equal(t, "60", minted.String(), "first stake mints one share per token")
	requireTotals(t, s, 61, 61)

	minted, err = s.Stake(bob, big.NewInt(40), 2)
	require.NoError(t, err)
	assert.Equal(t, "40", minted.String())
	requireTotals(t, s, 101, 101)

	// a reward doubles the value of every share
	require.NoError(t, s.AddReward(big.NewInt(101), 3))
	stake, err := s.StakeOf(alice)
	require.NoError(t, err)
	assert.Equal(t, "120", stake.String())

	minted, err = s.Stake(bob, big.NewInt(10), 4)
	require.NoError(t, err)
	assert.Equal(t, "5", minted.String())
	requireShares(t, s, bob, 45)

	burnt, redeemed, err := s.Unstake(alice, big.NewInt(11), 5)
	require.NoError(t, err)
	assert.Equal(t, "6", burnt.String(), "burnt shares round up")
	assert.Equal(t, "11", redeemed.String())
	requireShares(t, s, alice, 54)

	// more than the stake redeems all of it
	stake, err = s.StakeOf(alice)
	require.NoError(t, err)
	burnt, redeemed, err = s.Unstake(alice, big.NewInt(1_000), 6)
	require.NoError(t, err)
	assert.Equal(t, "54", burnt.String())
	assert.Equal(t, stake.String(), redeemed.String())
	requireShares(t, s, alice, 0)

	sharesThen, err := s.SharesAt(alice, 4)
	require.NoError(t, err)
	assert.Equal(t, "60", sharesThen.String())
	totalThen, err := s.TotalSharesAt(2)
	require.NoError(t, err)
	assert.Equal(t, "101", totalThen.String())
	stakedThen, err := s.TotalStakedAt(1)
	require.NoError(t, err)
	assert.Equal(t, "1", stakedThen.String())
}

func TestStakeTooSmall(t *testing.T) {
	s := newService(t)
	_, err := s.Stake(alice, big.NewInt(10), 2)
	require.NoError(t, err)
	require.NoError(t, s.AddReward(big.NewInt(100), 2))

	_, err = s.Stake(bob, big.NewInt(5), 3)
	assert.True(t, reverts.Is(err, reverts.InvalidValue))
}

func TestPayOutAndBurn(t *testing.T) {
	s := newService(t)
	_, err := s.Stake(alice, big.NewInt(60), 2)
	require.NoError(t, err)
	_, err = s.Stake(bob, big.NewInt(40), 2)
	require.NoError(t, err)

	assert.True(t, reverts.Is(s.PayOut(big.NewInt(101), 3), reverts.InvalidValue))
	require.NoError(t, s.PayOut(big.NewInt(100), 3))
	requireTotals(t, s, 101, 1)

	stake, err := s.StakeOf(alice)
	require.NoError(t, err)
	assert.Zero(t, stake.Sign())

	require.NoError(t, s.Burn(bob, big.NewInt(40), 4))
	requireTotals(t, s, 61, 1)
	assert.Error(t, s.Burn(bob, big.NewInt(1), 4))
}
