// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/bn"
	"github.com/vechain/stakepool/staker/account"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/staker/stakes"
	"github.com/vechain/stakepool/thor"
)

// Deposit pulls amount tokens from user into its unstaked balance.
// The user must have approved the pool as spender.
func (p *Pool) Deposit(user thor.Address, amount *big.Int) error {
	logger.Debug("depositing", "user", user, "amount", amount)
	err := p.write("deposit", func(tx *txn) error {
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		if err := tx.deposit(user, u, amount); err != nil {
			return err
		}
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("deposit failed", "user", user, "error", err)
		return err
	}
	logger.Info("deposited", "user", user, "amount", amount)
	return nil
}

// DepositAndStake deposits amount tokens and stakes them at once.
func (p *Pool) DepositAndStake(user thor.Address, amount *big.Int) error {
	logger.Debug("depositing and staking", "user", user, "amount", amount)
	err := p.write("depositAndStake", func(tx *txn) error {
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		if err := tx.deposit(user, u, amount); err != nil {
			return err
		}
		if err := tx.stake(user, u, amount); err != nil {
			return err
		}
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("deposit and stake failed", "user", user, "error", err)
		return err
	}
	logger.Info("deposited and staked", "user", user, "amount", amount)
	return nil
}

// Withdraw sends amount unstaked tokens back to user. Locked rewards and vesting deposits stay in the pool.
func (p *Pool) Withdraw(user thor.Address, amount *big.Int) error {
	logger.Debug("withdrawing", "user", user, "amount", amount)
	err := p.write("withdraw", func(tx *txn) error {
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		if err := tx.withdraw(user, u, amount); err != nil {
			return err
		}
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("withdraw failed", "user", user, "error", err)
		return err
	}
	logger.Info("withdrew", "user", user, "amount", amount)
	return nil
}

// Stake converts amount unstaked tokens of user into shares.
func (p *Pool) Stake(user thor.Address, amount *big.Int) error {
	logger.Debug("staking", "user", user, "amount", amount)
	err := p.write("stake", func(tx *txn) error {
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		if err := tx.stake(user, u, amount); err != nil {
			return err
		}
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("stake failed", "user", user, "error", err)
		return err
	}
	logger.Info("staked", "user", user, "amount", amount)
	return nil
}

// ScheduleUnstake requests amount staked tokens to be unstaked once the wait period passed.
// Any pending request is replaced. The reward credited for the current epoch is revoked
// in proportion to the shares scheduled out.
func (p *Pool) ScheduleUnstake(user thor.Address, amount *big.Int) error {
	logger.Debug("scheduling unstake", "user", user, "amount", amount)
	err := p.write("scheduleUnstake", func(tx *txn) error {
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		if err := tx.scheduleUnstake(user, u, amount); err != nil {
			return err
		}
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("schedule unstake failed", "user", user, "error", err)
		return err
	}
	logger.Info("scheduled unstake", "user", user, "amount", amount)
	return nil
}

// Unstake executes the matured unstake request of user and returns the redeemed tokens.
func (p *Pool) Unstake(user thor.Address) (*big.Int, error) {
	logger.Debug("unstaking", "user", user)
	var redeemed *big.Int
	err := p.write("unstake", func(tx *txn) error {
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		if redeemed, err = tx.unstake(user, u); err != nil {
			return err
		}
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("unstake failed", "user", user, "error", err)
		return nil, err
	}
	logger.Info("unstaked", "user", user, "amount", redeemed)
	return redeemed, nil
}

// UnstakeAndWithdraw executes the matured unstake request of user and withdraws the redeemed tokens.
func (p *Pool) UnstakeAndWithdraw(user thor.Address) (*big.Int, error) {
	logger.Debug("unstaking and withdrawing", "user", user)
	var redeemed *big.Int
	err := p.write("unstakeAndWithdraw", func(tx *txn) error {
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		if redeemed, err = tx.unstake(user, u); err != nil {
			return err
		}
		if redeemed.Sign() > 0 {
			if err := tx.withdraw(user, u, redeemed); err != nil {
				return err
			}
		}
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("unstake and withdraw failed", "user", user, "error", err)
		return nil, err
	}
	logger.Info("unstaked and withdrew", "user", user, "amount", redeemed)
	return redeemed, nil
}

// PayReward realizes the reward of the current epoch. Anyone may call it, any number of times.
func (p *Pool) PayReward() error {
	err := p.write("payReward", func(*txn) error { return nil })
	if err != nil {
		logger.Info("pay reward failed", "error", err)
	}
	return err
}

// DepositWithVesting deposits amount tokens from source for beneficiary. They unlock linearly
// between start and end. Each beneficiary and source pair deposits once. Only the timelock manager calls it.
func (p *Pool) DepositWithVesting(caller, source thor.Address, amount *big.Int, beneficiary thor.Address, start, end uint64) error {
	logger.Debug("depositing with vesting", "source", source, "beneficiary", beneficiary, "amount", amount, "start", start, "end", end)
	err := p.write("depositWithVesting", func(tx *txn) error {
		if err := tx.roles.RequireTimelockManager(caller); err != nil {
			return err
		}
		if err := requirePositive(amount); err != nil {
			return err
		}
		if end <= start {
			return reverts.New(reverts.InvalidValue, "release end must be after release start")
		}
		if source.IsZero() {
			return reverts.New(reverts.InvalidAddress, "source must not be the zero address")
		}
		u, err := tx.user(beneficiary)
		if err != nil {
			return err
		}
		lock := &account.Timelock{Start: start, End: end}
		lock.Total.SetBig(amount)
		lock.Remaining.SetBig(amount)
		if err := tx.accounts.AddTimelock(beneficiary, source, lock); err != nil {
			return err
		}
		if err := tx.ledger.TransferFrom(tx.addr, source, tx.addr, amount); err != nil {
			return errors.Wrap(err, "pull vesting tokens")
		}
		unstaked, err := stakes.Add(u.Unstaked.ToBig(), amount)
		if err != nil {
			return err
		}
		vesting, err := stakes.Add(u.Vesting.ToBig(), amount)
		if err != nil {
			return err
		}
		u.Unstaked, u.Vesting = bn.FromBig(unstaked), bn.FromBig(vesting)
		if _, _, err := tx.accounts.UpdateTimelock(beneficiary, source, u, tx.now); err != nil {
			return err
		}
		tx.emit(&Event{Kind: EventDepositedVesting, User: beneficiary, Counterparty: source, Amount: amount})
		return tx.accounts.Set(beneficiary, u)
	})
	if err != nil {
		logger.Info("deposit with vesting failed", "beneficiary", beneficiary, "source", source, "error", err)
		return err
	}
	logger.Info("deposited with vesting", "beneficiary", beneficiary, "source", source, "amount", amount)
	return nil
}

// UpdateTimelockStatus releases the vested part of the deposit of source for beneficiary
// and returns the amount still locked.
func (p *Pool) UpdateTimelockStatus(beneficiary, source thor.Address) (*big.Int, error) {
	var remaining *big.Int
	err := p.write("updateTimelockStatus", func(tx *txn) error {
		u, err := tx.user(beneficiary)
		if err != nil {
			return err
		}
		var released *big.Int
		if remaining, released, err = tx.accounts.UpdateTimelock(beneficiary, source, u, tx.now); err != nil {
			return err
		}
		if released.Sign() > 0 {
			tx.emit(&Event{Kind: EventUpdatedTimelock, User: beneficiary, Counterparty: source, Amount: remaining})
		}
		return tx.accounts.Set(beneficiary, u)
	})
	if err != nil {
		logger.Info("update timelock failed", "beneficiary", beneficiary, "source", source, "error", err)
		return nil, err
	}
	return remaining, nil
}

func (tx *txn) deposit(user thor.Address, u *account.User, amount *big.Int) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	if err := tx.ledger.TransferFrom(tx.addr, user, tx.addr, amount); err != nil {
		return errors.Wrap(err, "pull tokens")
	}
	unstaked, err := stakes.Add(u.Unstaked.ToBig(), amount)
	if err != nil {
		return err
	}
	u.Unstaked = bn.FromBig(unstaked)
	tx.emit(&Event{Kind: EventDeposited, User: user, Amount: amount})
	return nil
}

func (tx *txn) withdraw(user thor.Address, u *account.User, amount *big.Int) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	if u.Unstaked.CmpBig(amount) < 0 {
		return reverts.New(reverts.InvalidValue, "amount exceeds unstaked balance")
	}
	if err := tx.requireUnlocked(user, u, amount); err != nil {
		return err
	}
	u.Unstaked = bn.FromBig(new(big.Int).Sub(u.Unstaked.ToBig(), amount))
	if err := tx.ledger.Transfer(tx.addr, user, amount); err != nil {
		return errors.Wrap(err, "send tokens")
	}
	tx.emit(&Event{Kind: EventWithdrawn, User: user, Amount: amount})
	return nil
}

func (tx *txn) stake(user thor.Address, u *account.User, amount *big.Int) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	if u.Unstaked.CmpBig(amount) < 0 {
		return reverts.New(reverts.InvalidValue, "amount exceeds unstaked balance")
	}
	minted, err := tx.shares.Stake(user, amount, tx.block)
	if err != nil {
		return err
	}
	if err := tx.syncDelegate(user, minted, true); err != nil {
		return err
	}
	u.Unstaked = bn.FromBig(new(big.Int).Sub(u.Unstaked.ToBig(), amount))

	totalShares, _, err := tx.shares.Totals()
	if err != nil {
		return err
	}
	tx.emit(&Event{Kind: EventStaked, User: user, Amount: amount, Shares: minted, Total: totalShares})
	return nil
}

func (tx *txn) scheduleUnstake(user thor.Address, u *account.User, amount *big.Int) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	stake, err := tx.shares.StakeOf(user)
	if err != nil {
		return err
	}
	if amount.Cmp(stake) > 0 {
		return reverts.New(reverts.InvalidValue, "amount exceeds stake")
	}
	revoked, err := tx.revokeCredit(user, amount)
	if err != nil {
		return err
	}
	if stake, err = tx.shares.StakeOf(user); err != nil {
		return err
	}
	amount = stakes.Min(amount, stake)
	if err := tx.requireUnlocked(user, u, amount); err != nil {
		return err
	}
	wait, err := tx.params.UnstakeWaitPeriod()
	if err != nil {
		return err
	}
	if wait > math.MaxUint64-thor.UnstakeWindow-tx.now {
		return reverts.New(reverts.InvalidValue, "unstake wait period overflows")
	}
	u.UnstakeScheduledFor = tx.now + wait
	u.UnstakeAmount = bn.FromBig(amount)
	tx.emit(&Event{Kind: EventScheduledUnstake, User: user, Amount: amount, Shares: revoked, ScheduledFor: u.UnstakeScheduledFor})
	return nil
}

// revokeCredit forfeits the current epoch reward credited to user, in proportion to the shares
// amount tokens represent. The forfeited reward is burnt as shares, which leaves it to the remaining stakers.
// It returns the burnt shares.
func (tx *txn) revokeCredit(user thor.Address, amount *big.Int) (*big.Int, error) {
	credit, err := tx.accounts.Credit(user, tx.epoch)
	if err != nil {
		return nil, err
	}
	if credit.Sign() == 0 {
		return new(big.Int), nil
	}
	userShares, err := tx.shares.SharesOf(user)
	if err != nil {
		return nil, err
	}
	if userShares.Sign() == 0 {
		return new(big.Int), nil
	}
	totalShares, totalStaked, err := tx.shares.Totals()
	if err != nil {
		return nil, err
	}
	removed, err := stakes.SharesFor(amount, totalShares, totalStaked)
	if err != nil {
		return nil, err
	}
	removed = stakes.Min(removed, userShares)
	revoked, err := stakes.MulDiv(credit, removed, userShares)
	if err != nil {
		return nil, err
	}
	burnt, err := stakes.SharesFor(revoked, totalShares, totalStaked)
	if err != nil {
		return nil, err
	}
	burnt = stakes.Min(burnt, userShares)
	if burnt.Sign() > 0 {
		if err := tx.shares.Burn(user, burnt, tx.block); err != nil {
			return nil, err
		}
		if err := tx.syncDelegate(user, burnt, false); err != nil {
			return nil, err
		}
	}
	return burnt, tx.accounts.SetCredit(user, tx.epoch, credit.Sub(credit, revoked))
}

func (tx *txn) unstake(user thor.Address, u *account.User) (*big.Int, error) {
	if state := u.UnstakeState(tx.now); state != account.UnstakeMatured {
		return nil, reverts.Newf(reverts.Unauthorized, "unstake is %v", state)
	}
	burnt, redeemed, err := tx.shares.Unstake(user, u.UnstakeAmount.ToBig(), tx.block)
	if err != nil {
		return nil, err
	}
	if err := tx.syncDelegate(user, burnt, false); err != nil {
		return nil, err
	}
	unstaked, err := stakes.Add(u.Unstaked.ToBig(), redeemed)
	if err != nil {
		return nil, err
	}
	u.Unstaked = bn.FromBig(unstaked)
	u.ResetUnstake()

	_, totalStaked, err := tx.shares.Totals()
	if err != nil {
		return nil, err
	}
	tx.emit(&Event{Kind: EventUnstaked, User: user, Amount: redeemed, Shares: burnt, Total: totalStaked})
	return redeemed, nil
}

// syncDelegate applies a change of the shares of user to the delegation it gives, if any.
func (tx *txn) syncDelegate(user thor.Address, shares *big.Int, add bool) error {
	delegate, err := tx.delegations.DelegateOf(user)
	if err != nil || delegate.IsZero() || shares.Sign() == 0 {
		return err
	}
	if add {
		return tx.delegations.Add(delegate, shares, tx.block)
	}
	return tx.delegations.Sub(delegate, shares, tx.block)
}
