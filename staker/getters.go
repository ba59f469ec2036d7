// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakepool/staker/account"
	"github.com/vechain/stakepool/staker/params"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/staker/rewards"
	"github.com/vechain/stakepool/thor"
)

// UserInfo is a snapshot of a user at the time of the query.
type UserInfo struct {
	Unstaked            *big.Int
	Shares              *big.Int
	Stake               *big.Int
	Locked              *big.Int
	Vesting             *big.Int
	UnstakeAmount       *big.Int
	UnstakeScheduledFor uint64
	UnstakeState        account.UnstakeState
	Delegate            thor.Address
	ReceivedDelegation  *big.Int
	VotingPower         *big.Int

	LastUpdateEpoch      uint64
	LastDelegationUpdate uint64
	LastProposal         uint64
}

// Totals returns the latest total shares and total staked tokens.
func (p *Pool) Totals() (totalShares, totalStaked *big.Int, err error) {
	err = p.read(func() error {
		totalShares, totalStaked, err = p.shares.Totals()
		return err
	})
	return
}

// UserStake returns the tokens the shares of user are worth now.
func (p *Pool) UserStake(user thor.Address) (stake *big.Int, err error) {
	err = p.read(func() error {
		stake, err = p.shares.StakeOf(user)
		return err
	})
	return
}

func (p *Pool) UserSharesAt(version uint64, user thor.Address) (shares *big.Int, err error) {
	err = p.read(func() error {
		shares, err = p.shares.SharesAt(user, version)
		return err
	})
	return
}

func (p *Pool) UserDelegateAt(version uint64, user thor.Address) (delegate thor.Address, err error) {
	err = p.read(func() error {
		delegate, err = p.delegations.DelegateAt(user, version)
		return err
	})
	return
}

func (p *Pool) ReceivedDelegationAt(version uint64, delegate thor.Address) (received *big.Int, err error) {
	err = p.read(func() error {
		received, err = p.delegations.ReceivedAt(delegate, version)
		return err
	})
	return
}

// TotalStakeAt returns the total staked tokens at version.
func (p *Pool) TotalStakeAt(version uint64) (total *big.Int, err error) {
	err = p.read(func() error {
		total, err = p.shares.TotalStakedAt(version)
		return err
	})
	return
}

// TotalSupplyAt returns the total shares at version.
func (p *Pool) TotalSupplyAt(version uint64) (total *big.Int, err error) {
	err = p.read(func() error {
		total, err = p.shares.TotalSharesAt(version)
		return err
	})
	return
}

// TotalVotingPowerAt returns the voting power of all users at version, which is the total shares.
func (p *Pool) TotalVotingPowerAt(version uint64) (*big.Int, error) {
	return p.TotalSupplyAt(version)
}

// UserVotingPowerAt returns the own shares of user, unless delegated, plus the shares delegated to user.
func (p *Pool) UserVotingPowerAt(version uint64, user thor.Address) (power *big.Int, err error) {
	err = p.read(func() error {
		power, err = p.votingPowerAt(user, version)
		return err
	})
	return
}

// VotingSnapshot is the voting state of a user at a version.
type VotingSnapshot struct {
	Shares      *big.Int
	Delegate    thor.Address
	Received    *big.Int
	VotingPower *big.Int
}

// VotingSnapshotAt returns shares, delegate, received delegation and voting power of user at version,
// all read under the same lock.
func (p *Pool) VotingSnapshotAt(version uint64, user thor.Address) (snap *VotingSnapshot, err error) {
	err = p.read(func() error {
		s := &VotingSnapshot{}
		if s.Shares, err = p.shares.SharesAt(user, version); err != nil {
			return err
		}
		if s.Delegate, err = p.delegations.DelegateAt(user, version); err != nil {
			return err
		}
		if s.Received, err = p.delegations.ReceivedAt(user, version); err != nil {
			return err
		}
		if s.VotingPower, err = p.votingPowerAt(user, version); err != nil {
			return err
		}
		snap = s
		return nil
	})
	return
}

func (p *Pool) votingPowerAt(user thor.Address, version uint64) (*big.Int, error) {
	power, err := p.delegations.ReceivedAt(user, version)
	if err != nil {
		return nil, err
	}
	delegate, err := p.delegations.DelegateAt(user, version)
	if err != nil {
		return nil, err
	}
	if delegate.IsZero() {
		own, err := p.shares.SharesAt(user, version)
		if err != nil {
			return nil, err
		}
		power.Add(power, own)
	}
	return power, nil
}

// UserInfo returns the state of user. Reward locks are computed as if the user were caught up.
func (p *Pool) UserInfo(user thor.Address) (info *UserInfo, err error) {
	err = p.read(func() error {
		info, err = p.userInfo(user)
		return err
	})
	return
}

func (p *Pool) userInfo(user thor.Address) (*UserInfo, error) {
	if err := p.checkUser(user); err != nil {
		return nil, err
	}
	u, err := p.accounts.Get(user)
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()
	info := &UserInfo{
		Unstaked:             u.Unstaked.ToBig(),
		Vesting:              u.Vesting.ToBig(),
		UnstakeAmount:        u.UnstakeAmount.ToBig(),
		UnstakeScheduledFor:  u.UnstakeScheduledFor,
		UnstakeState:         u.UnstakeState(now),
		LastUpdateEpoch:      u.LastUpdateEpoch,
		LastDelegationUpdate: u.LastDelegationUpdate,
		LastProposal:         u.LastProposal,
	}
	if info.Shares, err = p.shares.SharesOf(user); err != nil {
		return nil, err
	}
	if info.Stake, err = p.shares.StakeOf(user); err != nil {
		return nil, err
	}
	if info.Locked, err = p.accounts.Locked(user, u, rewards.EpochOf(now), p.creditOf(user)); err != nil {
		return nil, err
	}
	if info.Delegate, err = p.delegations.DelegateOf(user); err != nil {
		return nil, err
	}
	if info.ReceivedDelegation, err = p.delegations.Received(user); err != nil {
		return nil, err
	}
	info.VotingPower = new(big.Int).Set(info.ReceivedDelegation)
	if info.Delegate.IsZero() {
		info.VotingPower.Add(info.VotingPower, info.Shares)
	}
	return info, nil
}

// UserLocked returns the rewards of user still locked now.
func (p *Pool) UserLocked(user thor.Address) (*big.Int, error) {
	info, err := p.UserInfo(user)
	if err != nil {
		return nil, err
	}
	return info.Locked, nil
}

func (p *Pool) UserUnstakeState(user thor.Address) (account.UnstakeState, error) {
	info, err := p.UserInfo(user)
	if err != nil {
		return account.Idle, err
	}
	return info.UnstakeState, nil
}

// EpochReward returns the reward paid for epoch, NoSuchEntity when none was.
func (p *Pool) EpochReward(epoch uint64) (reward rewards.Reward, err error) {
	err = p.read(func() error {
		reward, err = p.rewards.MustReward(epoch)
		return err
	})
	return
}

func (p *Pool) CurrentApr() (apr *big.Int, err error) {
	err = p.read(func() error {
		apr, err = p.rewards.CurrentApr()
		return err
	})
	return
}

// EpochIndexOfLastReward returns the last epoch payReward ran for.
func (p *Pool) EpochIndexOfLastReward() (epoch uint64, err error) {
	err = p.read(func() error {
		epoch, err = p.rewards.LastRewardEpoch()
		return err
	})
	return
}

// CurrentEpoch returns the epoch the pool clock is in.
func (p *Pool) CurrentEpoch() uint64 {
	return rewards.EpochOf(p.clock.Now())
}

func (p *Pool) GenesisEpoch() (epoch uint64, err error) {
	err = p.read(func() error {
		epoch, err = p.rewards.GenesisEpoch()
		return err
	})
	return
}

func (p *Pool) Params() (v params.Values, err error) {
	err = p.read(func() error {
		v, err = p.params.Get()
		return err
	})
	return
}

func (p *Pool) Admin() (admin thor.Address, err error) {
	err = p.read(func() error {
		admin, err = p.roles.Admin()
		return err
	})
	return
}

// Timelock returns the vesting deposit of source for beneficiary, NoSuchEntity when there is none.
func (p *Pool) Timelock(beneficiary, source thor.Address) (lock *account.Timelock, err error) {
	err = p.read(func() error {
		var ok bool
		if lock, ok, err = p.accounts.Timelock(beneficiary, source); err != nil {
			return err
		}
		if !ok {
			return reverts.New(reverts.NoSuchEntity, "no vesting deposit for beneficiary and source")
		}
		return nil
	})
	return
}
