// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/staker/account"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/token"
)

var (
	poolAddr     = thor.BytesToAddress([]byte("pool"))
	tokenAddr    = thor.BytesToAddress([]byte("token"))
	adminAddr    = thor.BytesToAddress([]byte("admin"))
	claimsAddr   = thor.BytesToAddress([]byte("claims"))
	votingAddr   = thor.BytesToAddress([]byte("voting"))
	timelockAddr = thor.BytesToAddress([]byte("timelock"))

	// genesisTime is the start of an epoch, far enough from zero for the reward window.
	genesisTime = 100 * thor.EpochLength
)

type PoolTest struct {
	*Pool
	t     *testing.T
	clock *ManualClock
	token *token.Token
	st    *state.State
	users []thor.Address
}

func newTest(t *testing.T) *PoolTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.MustNew(db)
	tok := token.New(tokenAddr, st)
	require.NoError(t, tok.SetMinter(poolAddr, true))
	require.NoError(t, st.Commit())

	clock := NewManualClock(genesisTime)
	pool, err := New(st, tok, clock, Options{
		Address:         poolAddr,
		Admin:           adminAddr,
		TimelockManager: timelockAddr,
		ClaimsManagers:  []thor.Address{claimsAddr},
		VotingApps:      []thor.Address{votingAddr},
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &PoolTest{
		Pool:  pool,
		t:     t,
		clock: clock,
		token: tok,
		st:    st,
	}
}

// failingLedger holds the minting privilege but fails every mint.
type failingLedger struct {
	*token.Token
}

func (failingLedger) Mint(_, _ thor.Address, _ *big.Int) error {
	return errors.New("mint rejected")
}

// failMint makes every reward mint fail from now on.
func (ts *PoolTest) failMint() *PoolTest {
	ts.Pool.ledger = failingLedger{ts.token}
	return ts
}

// failingTransferLedger sends nothing out of the pool.
type failingTransferLedger struct {
	*token.Token
}

func (failingTransferLedger) Transfer(_, _ thor.Address, _ *big.Int) error {
	return errors.New("transfer rejected")
}

// failTransfer makes every payment out of the pool fail from now on.
func (ts *PoolTest) failTransfer() *PoolTest {
	ts.Pool.ledger = failingTransferLedger{ts.token}
	return ts
}

// Fund allocates amount tokens to user and approves the pool to spend them.
func (ts *PoolTest) Fund(user thor.Address, amount int64) *PoolTest {
	require.NoError(ts.t, ts.token.Allocate(user, big.NewInt(amount)))
	allowance, err := ts.token.Allowance(user, poolAddr)
	require.NoError(ts.t, err)
	require.NoError(ts.t, ts.token.Approve(user, poolAddr, allowance.Add(allowance, big.NewInt(amount))))
	require.NoError(ts.t, ts.st.Commit())
	ts.track(user)
	return ts
}

func (ts *PoolTest) track(user thor.Address) {
	for _, u := range ts.users {
		if u == user {
			return
		}
	}
	ts.users = append(ts.users, user)
}

// Advance moves the clock forward by seconds.
func (ts *PoolTest) Advance(seconds uint64) *PoolTest {
	ts.clock.Advance(seconds)
	return ts
}

// AdvanceEpochs moves the clock forward by n epochs.
func (ts *PoolTest) AdvanceEpochs(n uint64) *PoolTest {
	return ts.Advance(n * thor.EpochLength)
}

func (ts *PoolTest) DepositAndStake(user thor.Address, amount int64) *PoolTest {
	ts.Fund(user, amount)
	require.NoError(ts.t, ts.Pool.DepositAndStake(user, big.NewInt(amount)), "deposit and stake %d", amount)
	return ts
}

func (ts *PoolTest) Delegate(user, delegate thor.Address) *PoolTest {
	require.NoError(ts.t, ts.Pool.Delegate(user, delegate))
	return ts
}

func (ts *PoolTest) Undelegate(user thor.Address) *PoolTest {
	require.NoError(ts.t, ts.Pool.Undelegate(user))
	return ts
}

func (ts *PoolTest) ScheduleUnstake(user thor.Address, amount int64) *PoolTest {
	require.NoError(ts.t, ts.Pool.ScheduleUnstake(user, big.NewInt(amount)))
	return ts
}

func (ts *PoolTest) PayReward() *PoolTest {
	require.NoError(ts.t, ts.Pool.PayReward())
	return ts
}

func (ts *PoolTest) AssertShares(user thor.Address, expected int64) *PoolTest {
	shares, err := ts.shares.SharesOf(user)
	assert.NoError(ts.t, err)
	assert.Equal(ts.t, big.NewInt(expected).String(), shares.String(), "shares mismatch for %v", user)
	return ts
}

func (ts *PoolTest) AssertStake(user thor.Address, expected int64) *PoolTest {
	stake, err := ts.UserStake(user)
	assert.NoError(ts.t, err)
	assert.Equal(ts.t, big.NewInt(expected).String(), stake.String(), "stake mismatch for %v", user)
	return ts
}

func (ts *PoolTest) AssertUnstaked(user thor.Address, expected int64) *PoolTest {
	info, err := ts.UserInfo(user)
	assert.NoError(ts.t, err)
	assert.Equal(ts.t, big.NewInt(expected).String(), info.Unstaked.String(), "unstaked mismatch for %v", user)
	return ts
}

func (ts *PoolTest) AssertTotals(expectedShares, expectedStaked int64) *PoolTest {
	totalShares, totalStaked, err := ts.Totals()
	assert.NoError(ts.t, err)
	assert.Equal(ts.t, big.NewInt(expectedShares).String(), totalShares.String(), "total shares mismatch")
	assert.Equal(ts.t, big.NewInt(expectedStaked).String(), totalStaked.String(), "total staked mismatch")
	return ts
}

func (ts *PoolTest) AssertVotingPower(user thor.Address, version uint64, expected int64) *PoolTest {
	power, err := ts.UserVotingPowerAt(version, user)
	assert.NoError(ts.t, err)
	assert.Equal(ts.t, big.NewInt(expected).String(), power.String(), "voting power mismatch for %v at %d", user, version)
	return ts
}

func (ts *PoolTest) AssertUnstakeState(user thor.Address, expected account.UnstakeState) *PoolTest {
	got, err := ts.UserUnstakeState(user)
	assert.NoError(ts.t, err)
	assert.Equal(ts.t, expected, got, "unstake state mismatch for %v", user)
	return ts
}

func (ts *PoolTest) AssertBalance(addr thor.Address, expected int64) *PoolTest {
	balance, err := ts.token.BalanceOf(addr)
	assert.NoError(ts.t, err)
	assert.Equal(ts.t, big.NewInt(expected).String(), balance.String(), "token balance mismatch for %v", addr)
	return ts
}

func (ts *PoolTest) AssertRevert(err error, kind reverts.Kind) *PoolTest {
	actual, ok := reverts.KindOf(err)
	assert.True(ts.t, ok, "expected a revert, got %v", err)
	assert.Equal(ts.t, kind, actual, "revert kind mismatch: %v", err)
	return ts
}

// AssertInvariants checks share conservation, the rounding of stakes and the delegation totals.
func (ts *PoolTest) AssertInvariants() *PoolTest {
	totalShares, totalStaked, err := ts.shares.Totals()
	require.NoError(ts.t, err)

	sumShares, err := ts.shares.SharesOf(poolAddr)
	require.NoError(ts.t, err)
	sumStakes, err := ts.shares.StakeOf(poolAddr)
	require.NoError(ts.t, err)
	received := make(map[thor.Address]*big.Int)

	for _, user := range ts.users {
		shares, err := ts.shares.SharesOf(user)
		require.NoError(ts.t, err)
		stake, err := ts.shares.StakeOf(user)
		require.NoError(ts.t, err)
		sumShares.Add(sumShares, shares)
		sumStakes.Add(sumStakes, stake)

		delegate, err := ts.delegations.DelegateOf(user)
		require.NoError(ts.t, err)
		if !delegate.IsZero() {
			if received[delegate] == nil {
				received[delegate] = new(big.Int)
			}
			received[delegate].Add(received[delegate], shares)
		}
	}
	assert.Equal(ts.t, totalShares.String(), sumShares.String(), "sum of shares must equal total shares")
	assert.LessOrEqual(ts.t, sumStakes.Cmp(totalStaked), 0, "sum of stakes %v exceeds total staked %v", sumStakes, totalStaked)

	for _, user := range ts.users {
		got, err := ts.delegations.Received(user)
		require.NoError(ts.t, err)
		want := received[user]
		if want == nil {
			want = new(big.Int)
		}
		assert.Equal(ts.t, want.String(), got.String(), "received delegation mismatch for %v", user)
	}
	return ts
}
