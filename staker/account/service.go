// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package account keeps user balances, the unstake slot, reward locks and vesting timelocks.
package account

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/bn"
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/thor"
)

var (
	slotUsers     = thor.BytesToBytes32([]byte("users"))
	slotCredits   = thor.BytesToBytes32([]byte("reward-credits"))
	slotTimelocks = thor.BytesToBytes32([]byte("timelocks"))

	vestingPeriod = new(big.Int).SetUint64(thor.RewardVestingPeriod)
)

// CreditFunc computes the reward credited to a user for an epoch.
type CreditFunc func(epoch uint64) (*big.Int, error)

type creditKey struct {
	user  thor.Address
	epoch uint64
}

func (k creditKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(k.user.Bytes(), k.epoch)
}

// Service manages user records.
type Service struct {
	users     *solidity.Mapping[thor.Address, User]
	credits   *solidity.Mapping[creditKey, bn.Int]
	timelocks *solidity.Mapping[solidity.PairKey, Timelock]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		users:     solidity.NewMapping[thor.Address, User](sctx, slotUsers),
		credits:   solidity.NewMapping[creditKey, bn.Int](sctx, slotCredits),
		timelocks: solidity.NewMapping[solidity.PairKey, Timelock](sctx, slotTimelocks),
	}
}

func (s *Service) Get(addr thor.Address) (*User, error) {
	u, err := s.users.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &u, nil
}

func (s *Service) Set(addr thor.Address, u *User) error {
	return errors.Wrap(s.users.Set(addr, *u), "set user")
}

// Credit returns the stored reward credit of user for epoch.
func (s *Service) Credit(addr thor.Address, epoch uint64) (*big.Int, error) {
	c, err := s.credits.Get(creditKey{addr, epoch})
	return c.ToBig(), err
}

// SetCredit stores the reward credit of user for epoch.
func (s *Service) SetCredit(addr thor.Address, epoch uint64, credit *big.Int) error {
	if credit.Sign() == 0 {
		s.credits.Delete(creditKey{addr, epoch})
		return nil
	}
	return s.credits.Set(creditKey{addr, epoch}, bn.FromBig(credit))
}

// windowStart returns the oldest epoch whose reward is still partially locked at current.
func windowStart(current uint64) uint64 {
	if current < thor.RewardVestingPeriod {
		return 1
	}
	return current - thor.RewardVestingPeriod + 1
}

// CatchUp credits u with the rewards of every epoch after its last update up to target.
// Epochs whose rewards are already fully unlocked at target are skipped.
func (s *Service) CatchUp(addr thor.Address, u *User, target uint64, credit CreditFunc) error {
	if u.LastUpdateEpoch >= target {
		return nil
	}
	from := max(u.LastUpdateEpoch+1, windowStart(target))
	for epoch := from; epoch <= target; epoch++ {
		c, err := credit(epoch)
		if err != nil {
			return err
		}
		if err := s.SetCredit(addr, epoch, c); err != nil {
			return err
		}
	}
	u.LastUpdateEpoch = target
	u.OldestLockedEpoch = max(u.OldestLockedEpoch, windowStart(target))
	return nil
}

// Locked returns the reward amount of u still locked at the current epoch. Each epoch reward
// unlocks linearly over thor.RewardVestingPeriod epochs. Epochs u has not caught up with are
// computed by pending, which may be nil when u is current.
func (s *Service) Locked(addr thor.Address, u *User, current uint64, pending CreditFunc) (*big.Int, error) {
	sum := new(big.Int)
	from := max(u.OldestLockedEpoch, windowStart(current))
	for epoch := from; epoch <= current; epoch++ {
		var (
			c   *big.Int
			err error
		)
		if epoch > u.LastUpdateEpoch && pending != nil {
			c, err = pending(epoch)
		} else {
			c, err = s.Credit(addr, epoch)
		}
		if err != nil {
			return nil, err
		}
		if c.Sign() == 0 {
			continue
		}
		// remaining epochs of the vesting period, the current one included
		weight := new(big.Int).SetUint64(epoch + thor.RewardVestingPeriod - current)
		sum.Add(sum, c.Mul(c, weight))
	}
	return sum.Quo(sum, vestingPeriod), nil
}

// Timelock returns the vesting deposit of beneficiary from source.
func (s *Service) Timelock(beneficiary, source thor.Address) (*Timelock, bool, error) {
	key := solidity.PairKey{First: beneficiary, Second: source}
	ok, err := s.timelocks.Has(key)
	if err != nil || !ok {
		return nil, false, err
	}
	t, err := s.timelocks.Get(key)
	if err != nil {
		return nil, false, err
	}
	return &t, true, nil
}

// AddTimelock registers a vesting deposit. Each (beneficiary, source) pair deposits once.
func (s *Service) AddTimelock(beneficiary, source thor.Address, t *Timelock) error {
	if _, ok, err := s.Timelock(beneficiary, source); err != nil {
		return err
	} else if ok {
		return reverts.New(reverts.InvalidValue, "vesting already deposited for beneficiary and source")
	}
	return s.timelocks.Set(solidity.PairKey{First: beneficiary, Second: source}, *t)
}

// UpdateTimelock releases the vested part of a deposit from u.Vesting and returns the amount still locked.
func (s *Service) UpdateTimelock(beneficiary, source thor.Address, u *User, now uint64) (remaining, released *big.Int, err error) {
	t, ok, err := s.Timelock(beneficiary, source)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, reverts.New(reverts.NoSuchEntity, "no vesting deposit for beneficiary and source")
	}
	locked, err := t.LockedAt(now)
	if err != nil {
		return nil, nil, err
	}
	prev := t.Remaining.ToBig()
	if locked.Cmp(prev) >= 0 {
		return prev, new(big.Int), nil
	}
	released = new(big.Int).Sub(prev, locked)

	vesting := u.Vesting.ToBig()
	vesting.Sub(vesting, released)
	if vesting.Sign() < 0 {
		return nil, nil, errors.New("account: vesting underflow")
	}
	u.Vesting = bn.FromBig(vesting)

	t.Remaining = bn.FromBig(locked)
	if err := s.timelocks.Set(solidity.PairKey{First: beneficiary, Second: source}, *t); err != nil {
		return nil, nil, err
	}
	return locked, released, nil
}
