// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staker implements the staking pool: deposits, share accounting, epoch rewards,
// scheduled unstakes, reward locks, vesting deposits, delegation of voting power and claim payouts.
package staker

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/account"
	"github.com/vechain/stakepool/staker/delegation"
	"github.com/vechain/stakepool/staker/params"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/staker/rewards"
	"github.com/vechain/stakepool/staker/shares"
	"github.com/vechain/stakepool/staker/stakes"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/token"
)

var logger = log.WithContext("pkg", "staker")

func SetLogger(l log.Logger) {
	logger = l
}

// Options configures a pool created on an empty state.
type Options struct {
	// Address is the account holding the pool storage and its tokens.
	Address         thor.Address
	Admin           thor.Address
	TimelockManager thor.Address
	ClaimsManagers  []thor.Address
	VotingApps      []thor.Address
	// Params defaults to params.Defaults when nil.
	Params *params.Values
}

// Pool is the staking pool. Mutating operations are serialized and atomic, reads run concurrently.
type Pool struct {
	lock   sync.RWMutex
	addr   thor.Address
	state  *state.State
	ledger token.Ledger
	clock  Clock

	feed  event.Feed
	scope event.SubscriptionScope

	params      *params.Params
	roles       *params.Roles
	shares      *shares.Service
	rewards     *rewards.Service
	accounts    *account.Service
	delegations *delegation.Service
}

// New opens the pool stored at opts.Address, creating it when the state holds none.
func New(st *state.State, ledger token.Ledger, clock Clock, opts Options) (*Pool, error) {
	if opts.Address.IsZero() {
		return nil, reverts.New(reverts.InvalidAddress, "pool address must not be zero")
	}
	sctx := solidity.NewContext(opts.Address, st)
	p := &Pool{
		addr:        opts.Address,
		state:       st,
		ledger:      ledger,
		clock:       clock,
		params:      params.New(sctx),
		roles:       params.NewRoles(sctx),
		shares:      shares.New(sctx),
		rewards:     rewards.New(sctx),
		accounts:    account.New(sctx),
		delegations: delegation.New(sctx),
	}

	admin, err := p.roles.Admin()
	if err != nil {
		return nil, err
	}
	if !admin.IsZero() {
		logger.Info("loaded pool", "address", p.addr, "admin", admin)
		return p, nil
	}

	logger.Debug("creating pool", "address", p.addr, "admin", opts.Admin)
	if err := p.init(opts); err != nil {
		logger.Info("create pool failed", "address", p.addr, "error", err)
		return nil, err
	}
	logger.Info("created pool", "address", p.addr)
	return p, nil
}

func (p *Pool) init(opts Options) error {
	values := params.Defaults()
	if opts.Params != nil {
		values = *opts.Params
	}
	now, block := p.clock.Now(), p.clock.Block()

	revision := p.state.NewCheckpoint()
	err := func() error {
		if err := p.params.Init(values); err != nil {
			return err
		}
		if err := p.roles.SetAdmin(opts.Admin); err != nil {
			return err
		}
		if err := p.roles.SetTimelockManager(opts.TimelockManager); err != nil {
			return err
		}
		for _, m := range opts.ClaimsManagers {
			if err := p.roles.SetClaimsManager(m, true); err != nil {
				return err
			}
		}
		for _, app := range opts.VotingApps {
			if err := p.roles.SetVotingApp(app, true); err != nil {
				return err
			}
		}
		if err := p.shares.Init(p.addr, block); err != nil {
			return err
		}
		return p.rewards.Init(rewards.EpochOf(now), values.MaxApr)
	}()
	if err != nil {
		p.state.RevertTo(revision)
		return err
	}
	return p.state.Commit()
}

func (p *Pool) Address() thor.Address {
	return p.addr
}

// SubscribeEvents delivers committed events to ch. The channel should be buffered,
// sending blocks until every subscriber received the event.
func (p *Pool) SubscribeEvents(ch chan<- *Event) event.Subscription {
	return p.scope.Track(p.feed.Subscribe(ch))
}

// Close ends all event subscriptions.
func (p *Pool) Close() {
	p.scope.Close()
}

// txn is the context of one mutating operation.
type txn struct {
	*Pool
	now   uint64
	block uint64
	epoch uint64

	events []*Event
	paid   *rewards.Reward
}

func (tx *txn) emit(ev *Event) {
	ev.Block = tx.block
	ev.Time = tx.now
	tx.events = append(tx.events, ev)
}

// write runs fn as one all-or-nothing transaction. The pending epoch reward is paid first.
// Events are published once the changes are committed.
func (p *Pool) write(op string, fn func(tx *txn) error) (err error) {
	start := time.Now()
	defer func() {
		metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": resultOf(err)})
		metricOperationDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	}()

	p.lock.Lock()
	tx := &txn{Pool: p, now: p.clock.Now(), block: p.clock.Block()}
	tx.epoch = rewards.EpochOf(tx.now)

	revision := p.state.NewCheckpoint()
	err = tx.payReward()
	if err == nil {
		err = fn(tx)
	}
	if err == nil {
		err = p.state.Commit()
	}
	if err != nil {
		p.state.RevertTo(revision)
		p.lock.Unlock()
		return err
	}
	// events are sent before unlocking so that subscribers observe them in commit order
	for _, ev := range tx.events {
		p.feed.Send(ev)
	}
	p.lock.Unlock()

	if tx.paid != nil {
		metricRewardEpoch().Set(int64(tx.epoch))
		metricCurrentApr().Set(aprGauge(tx.paid.Apr.ToBig()))
	}
	return nil
}

// read runs fn under the read lock.
func (p *Pool) read(fn func() error) error {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return fn()
}

// payReward mints the reward of the current epoch, unless it has been paid already.
// Epochs elapsed without a payment are skipped.
func (tx *txn) payReward() error {
	last, err := tx.rewards.LastRewardEpoch()
	if err != nil {
		return err
	}
	if last >= tx.epoch {
		return nil
	}

	minter, err := tx.ledger.IsMinter(tx.addr)
	if err != nil {
		return errors.Wrap(err, "check minter")
	}
	if !minter {
		logger.Debug("pool is not a minter, skipping reward", "epoch", tx.epoch)
		metricRewardsPaid().AddWithLabel(1, map[string]string{"minted": "false"})
		return tx.rewards.SetLastRewardEpoch(tx.epoch)
	}

	v, err := tx.params.Get()
	if err != nil {
		return err
	}
	_, totalStaked, err := tx.shares.Totals()
	if err != nil {
		return err
	}
	apr, err := tx.rewards.CurrentApr()
	if err != nil {
		return err
	}
	next := rewards.NextApr(apr, v.MinApr, v.MaxApr, v.AprUpdateStep, v.StakeTarget, totalStaked)
	if err := tx.rewards.SetCurrentApr(next); err != nil {
		return err
	}

	amount, err := rewards.RewardFor(totalStaked, next)
	if err != nil {
		return err
	}
	if amount.Sign() > 0 {
		if err := tx.ledger.Mint(tx.addr, tx.addr, amount); err != nil {
			return errors.Wrap(err, "mint reward")
		}
		if err := tx.shares.AddReward(amount, tx.block); err != nil {
			return err
		}
	}

	reward := rewards.Reward{AtBlock: tx.block}
	reward.Amount.SetBig(amount)
	reward.Apr.SetBig(next)
	if err := tx.rewards.Record(tx.epoch, reward); err != nil {
		return err
	}
	if err := tx.rewards.SetLastRewardEpoch(tx.epoch); err != nil {
		return err
	}
	tx.paid = &reward
	metricRewardsPaid().AddWithLabel(1, map[string]string{"minted": "true"})

	logger.Debug("paid reward", "epoch", tx.epoch, "amount", amount, "apr", next)
	tx.emit(&Event{
		Kind:   EventPaidReward,
		Amount: amount,
		Total:  new(big.Int).Add(totalStaked, amount),
		Epoch:  tx.epoch,
		Value:  next.String(),
	})
	return nil
}

// creditOf returns the reward share of user for an epoch, given by its shares when the reward was minted.
func (p *Pool) creditOf(user thor.Address) account.CreditFunc {
	return func(epoch uint64) (*big.Int, error) {
		r, ok, err := p.rewards.Reward(epoch)
		if err != nil {
			return nil, err
		}
		if !ok || r.Amount.IsZero() {
			return new(big.Int), nil
		}
		userShares, err := p.shares.SharesAt(user, r.AtBlock)
		if err != nil {
			return nil, err
		}
		if userShares.Sign() == 0 {
			return userShares, nil
		}
		totalShares, err := p.shares.TotalSharesAt(r.AtBlock)
		if err != nil {
			return nil, err
		}
		return stakes.MulDiv(r.Amount.ToBig(), userShares, totalShares)
	}
}

// checkUser rejects addresses that cannot hold a user record.
func (p *Pool) checkUser(user thor.Address) error {
	if user.IsZero() {
		return reverts.New(reverts.InvalidAddress, "user must not be the zero address")
	}
	if user == p.addr {
		return reverts.New(reverts.InvalidAddress, "user must not be the pool")
	}
	return nil
}

// user loads the record of addr and brings its reward locks current.
func (tx *txn) user(addr thor.Address) (*account.User, error) {
	if err := tx.checkUser(addr); err != nil {
		return nil, err
	}
	u, err := tx.accounts.Get(addr)
	if err != nil {
		return nil, err
	}
	if err := tx.accounts.CatchUp(addr, u, tx.epoch, tx.creditOf(addr)); err != nil {
		return nil, errors.Wrap(err, "catch up")
	}
	return u, nil
}

// requireUnlocked rejects spending amount when the unstaked and staked funds left
// would not cover the locked rewards and the vesting deposits.
func (tx *txn) requireUnlocked(addr thor.Address, u *account.User, amount *big.Int) error {
	stake, err := tx.shares.StakeOf(addr)
	if err != nil {
		return err
	}
	locked, err := tx.accounts.Locked(addr, u, tx.epoch, nil)
	if err != nil {
		return err
	}
	funds := new(big.Int).Add(u.Unstaked.ToBig(), stake)
	funds.Sub(funds, amount)
	need := locked.Add(locked, u.Vesting.ToBig())
	if funds.Cmp(need) < 0 {
		return reverts.Newf(reverts.InvalidValue, "amount exceeds unlocked balance, %v locked", need)
	}
	return nil
}

func requirePositive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.New(reverts.InvalidValue, "amount must be positive")
	}
	return nil
}
