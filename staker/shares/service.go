// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package shares keeps the share ledger: pool totals and per-user share balances.
// The exchange rate is never stored, it is always derived as totalStaked / totalShares.
package shares

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/bn"
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/checkpoint"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/staker/stakes"
	"github.com/vechain/stakepool/thor"
)

var (
	slotTotalShares = thor.BytesToBytes32([]byte("total-shares"))
	slotTotalStaked = thor.BytesToBytes32([]byte("total-staked"))
	slotUserShares  = thor.BytesToBytes32([]byte("user-shares"))

	// initial is the seed both totals start from, it keeps the exchange rate defined.
	initial = big.NewInt(1)
)

// Service manages the share ledger.
type Service struct {
	totalShares *checkpoint.Checkpoints[bn.Int]
	totalStaked *checkpoint.Checkpoints[bn.Int]
	userShares  *checkpoint.Map[thor.Address, bn.Int]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		totalShares: checkpoint.New[bn.Int](sctx, slotTotalShares),
		totalStaked: checkpoint.New[bn.Int](sctx, slotTotalStaked),
		userShares:  checkpoint.NewMap[thor.Address, bn.Int](sctx, slotUserShares),
	}
}

// Init seeds both totals with one unit owned by holder, so that the sum of user shares
// always equals the total shares.
func (s *Service) Init(holder thor.Address, version uint64) error {
	if err := s.totalShares.Push(version, bn.FromBig(initial)); err != nil {
		return err
	}
	if err := s.totalStaked.Push(version, bn.FromBig(initial)); err != nil {
		return err
	}
	return s.userShares.Of(holder).Push(version, bn.FromBig(initial))
}

// Totals returns the latest total shares and total staked tokens.
func (s *Service) Totals() (totalShares, totalStaked *big.Int, err error) {
	ts, err := s.totalShares.Latest()
	if err != nil {
		return nil, nil, err
	}
	tk, err := s.totalStaked.Latest()
	if err != nil {
		return nil, nil, err
	}
	return ts.ToBig(), tk.ToBig(), nil
}

func (s *Service) TotalSharesAt(version uint64) (*big.Int, error) {
	v, err := s.totalShares.At(version)
	return v.ToBig(), err
}

func (s *Service) TotalStakedAt(version uint64) (*big.Int, error) {
	v, err := s.totalStaked.At(version)
	return v.ToBig(), err
}

func (s *Service) SharesOf(user thor.Address) (*big.Int, error) {
	v, err := s.userShares.Of(user).Latest()
	return v.ToBig(), err
}

func (s *Service) SharesAt(user thor.Address, version uint64) (*big.Int, error) {
	v, err := s.userShares.Of(user).At(version)
	return v.ToBig(), err
}

// History returns the share checkpoints of user.
func (s *Service) History(user thor.Address) *checkpoint.Checkpoints[bn.Int] {
	return s.userShares.Of(user)
}

// StakeOf returns the tokens the shares of user are worth, rounded down.
func (s *Service) StakeOf(user thor.Address) (*big.Int, error) {
	shares, err := s.SharesOf(user)
	if err != nil {
		return nil, err
	}
	ts, tk, err := s.Totals()
	if err != nil {
		return nil, err
	}
	return stakes.StakeOf(shares, ts, tk)
}

// SharesFor returns the shares amount tokens are worth at the current rate.
func (s *Service) SharesFor(amount *big.Int) (*big.Int, error) {
	ts, tk, err := s.Totals()
	if err != nil {
		return nil, err
	}
	return stakes.SharesFor(amount, ts, tk)
}

// Stake converts amount tokens into shares credited to user and returns the minted shares.
func (s *Service) Stake(user thor.Address, amount *big.Int, version uint64) (*big.Int, error) {
	ts, tk, err := s.Totals()
	if err != nil {
		return nil, err
	}
	minted := new(big.Int).Set(amount)
	if ts.Cmp(initial) != 0 {
		if minted, err = stakes.SharesFor(amount, ts, tk); err != nil {
			return nil, err
		}
	}
	if minted.Sign() == 0 {
		return nil, reverts.New(reverts.InvalidValue, "amount too small to mint a share")
	}
	if err := s.move(user, minted, amount, version, true); err != nil {
		return nil, err
	}
	return minted, nil
}

// Unstake redeems amount tokens of user, clamped to the current stake of user.
// It burns the shares, rounding against the user, and returns the burnt shares with the redeemed amount.
func (s *Service) Unstake(user thor.Address, amount *big.Int, version uint64) (burnt, redeemed *big.Int, err error) {
	shares, err := s.SharesOf(user)
	if err != nil {
		return nil, nil, err
	}
	ts, tk, err := s.Totals()
	if err != nil {
		return nil, nil, err
	}
	stake, err := stakes.StakeOf(shares, ts, tk)
	if err != nil {
		return nil, nil, err
	}

	if amount.Cmp(stake) >= 0 {
		burnt, redeemed = shares, stake
	} else {
		if burnt, err = stakes.MulDivUp(amount, ts, tk); err != nil {
			return nil, nil, err
		}
		burnt = stakes.Min(burnt, shares)
		redeemed = new(big.Int).Set(amount)
	}
	if err := s.move(user, burnt, redeemed, version, false); err != nil {
		return nil, nil, err
	}
	return burnt, redeemed, nil
}

// Burn removes shares of user without redeeming tokens, which raises the value of every remaining share.
func (s *Service) Burn(user thor.Address, shares *big.Int, version uint64) error {
	return s.move(user, shares, new(big.Int), version, false)
}

// AddReward raises total staked tokens without minting shares.
func (s *Service) AddReward(amount *big.Int, version uint64) error {
	tk, err := s.totalStaked.Latest()
	if err != nil {
		return err
	}
	sum, err := stakes.Add(tk.ToBig(), amount)
	if err != nil {
		return err
	}
	return s.totalStaked.Push(version, bn.FromBig(sum))
}

// PayOut lowers total staked tokens without burning shares. At least the seed unit must remain.
func (s *Service) PayOut(amount *big.Int, version uint64) error {
	tk, err := s.totalStaked.Latest()
	if err != nil {
		return err
	}
	rest := new(big.Int).Sub(tk.ToBig(), amount)
	if rest.Cmp(initial) < 0 {
		return reverts.New(reverts.InvalidValue, "payout exceeds total staked")
	}
	return s.totalStaked.Push(version, bn.FromBig(rest))
}

// move adds or removes shares of user together with tokens of the pool totals.
func (s *Service) move(user thor.Address, shares, tokens *big.Int, version uint64, add bool) error {
	history := s.userShares.Of(user)
	cur, err := history.Latest()
	if err != nil {
		return err
	}
	ts, tk, err := s.Totals()
	if err != nil {
		return err
	}

	userShares, totalShares, totalStaked := cur.ToBig(), ts, tk
	if add {
		if userShares, err = stakes.Add(userShares, shares); err != nil {
			return err
		}
		if totalShares, err = stakes.Add(totalShares, shares); err != nil {
			return err
		}
		if totalStaked, err = stakes.Add(totalStaked, tokens); err != nil {
			return err
		}
	} else {
		userShares.Sub(userShares, shares)
		totalShares.Sub(totalShares, shares)
		totalStaked.Sub(totalStaked, tokens)
		if userShares.Sign() < 0 || totalShares.Cmp(initial) < 0 || totalStaked.Cmp(initial) < 0 {
			return errors.New("shares: ledger underflow")
		}
	}

	if err := history.Push(version, bn.FromBig(userShares)); err != nil {
		return err
	}
	if err := s.totalShares.Push(version, bn.FromBig(totalShares)); err != nil {
		return err
	}
	return s.totalStaked.Push(version, bn.FromBig(totalStaked))
}
