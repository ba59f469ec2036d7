// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards implements the epoch reward engine and its APR feedback loop.
package rewards

import (
	"math/big"

	"github.com/vechain/stakepool/bn"
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/staker/stakes"
	"github.com/vechain/stakepool/thor"
)

var (
	slotGenesisEpoch    = thor.BytesToBytes32([]byte("genesis-epoch"))
	slotLastRewardEpoch = thor.BytesToBytes32([]byte("last-reward-epoch"))
	slotCurrentApr      = thor.BytesToBytes32([]byte("current-apr"))
	slotEpochRewards    = thor.BytesToBytes32([]byte("epoch-rewards"))

	hundredPercent = new(big.Int).SetUint64(thor.HundredPercent)
	stepDenom      = new(big.Int).SetUint64(thor.AprUpdateStepDenominator)
	vestingPeriod  = new(big.Int).SetUint64(thor.RewardVestingPeriod)
)

// Reward is the record of tokens minted for an epoch. It is written once.
type Reward struct {
	Amount  bn.Int
	AtBlock uint64
	Apr     bn.Int
}

// EpochOf returns the epoch index of a unix timestamp.
func EpochOf(now uint64) uint64 {
	return now / thor.EpochLength
}

// Service manages the reward schedule.
type Service struct {
	genesisEpoch    *solidity.Raw[uint64]
	lastRewardEpoch *solidity.Raw[uint64]
	currentApr      *solidity.Uint256
	rewards         *solidity.Mapping[solidity.Uint64Key, Reward]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		genesisEpoch:    solidity.NewRaw[uint64](sctx, slotGenesisEpoch),
		lastRewardEpoch: solidity.NewRaw[uint64](sctx, slotLastRewardEpoch),
		currentApr:      solidity.NewUint256(sctx, slotCurrentApr),
		rewards:         solidity.NewMapping[solidity.Uint64Key, Reward](sctx, slotEpochRewards),
	}
}

// Init starts the schedule at the genesis epoch. No reward is paid for it.
func (s *Service) Init(genesisEpoch uint64, apr *big.Int) error {
	if err := s.genesisEpoch.Set(genesisEpoch); err != nil {
		return err
	}
	if err := s.lastRewardEpoch.Set(genesisEpoch); err != nil {
		return err
	}
	return s.currentApr.Set(apr)
}

func (s *Service) GenesisEpoch() (uint64, error) {
	return s.genesisEpoch.Get()
}

func (s *Service) LastRewardEpoch() (uint64, error) {
	return s.lastRewardEpoch.Get()
}

func (s *Service) SetLastRewardEpoch(epoch uint64) error {
	return s.lastRewardEpoch.Set(epoch)
}

func (s *Service) CurrentApr() (*big.Int, error) {
	return s.currentApr.Get()
}

func (s *Service) SetCurrentApr(apr *big.Int) error {
	return s.currentApr.Set(apr)
}

// Reward returns the record of epoch, the second value reports whether one exists.
func (s *Service) Reward(epoch uint64) (Reward, bool, error) {
	key := solidity.Uint64Key(epoch)
	ok, err := s.rewards.Has(key)
	if err != nil || !ok {
		return Reward{}, false, err
	}
	r, err := s.rewards.Get(key)
	if err != nil {
		return Reward{}, false, err
	}
	return r, true, nil
}

// MustReward is Reward failing with NoSuchEntity when the epoch has no record.
func (s *Service) MustReward(epoch uint64) (Reward, error) {
	r, ok, err := s.Reward(epoch)
	if err != nil {
		return Reward{}, err
	}
	if !ok {
		return Reward{}, reverts.Newf(reverts.NoSuchEntity, "no reward for epoch %d", epoch)
	}
	return r, nil
}

// Record stores the reward of epoch. An epoch can be recorded only once.
func (s *Service) Record(epoch uint64, r Reward) error {
	if _, ok, err := s.Reward(epoch); err != nil {
		return err
	} else if ok {
		return reverts.Newf(reverts.InvalidValue, "reward for epoch %d already recorded", epoch)
	}
	return s.rewards.Set(solidity.Uint64Key(epoch), r)
}

// NextApr applies one step of the feedback rule: the APR moves by the relative distance between
// the stake target and the total staked, scaled by the update step, then it is clamped to [minApr, maxApr].
// Percentages are in thor.HundredPercent units and the step in thor.AprUpdateStepDenominator units.
func NextApr(apr, minApr, maxApr, step, target, totalStaked *big.Int) *big.Int {
	below := totalStaked.Cmp(target) < 0
	delta := new(big.Int).Sub(target, totalStaked)
	delta.Abs(delta)

	deltaPct := new(big.Int).Mul(delta, hundredPercent)
	deltaPct.Quo(deltaPct, target)

	update := new(big.Int).Mul(deltaPct, step)
	update.Quo(update, stepDenom)

	factor := new(big.Int)
	if below {
		factor.Add(hundredPercent, update)
	} else if update.Cmp(hundredPercent) < 0 {
		factor.Sub(hundredPercent, update)
	}

	next := new(big.Int).Mul(apr, factor)
	next.Quo(next, hundredPercent)

	if next.Cmp(minApr) < 0 {
		next.Set(minApr)
	}
	if next.Cmp(maxApr) > 0 {
		next.Set(maxApr)
	}
	return next
}

// RewardFor returns the tokens one epoch yields on totalStaked at apr.
func RewardFor(totalStaked, apr *big.Int) (*big.Int, error) {
	perEpoch := new(big.Int).Mul(vestingPeriod, hundredPercent)
	return stakes.MulDiv(totalStaked, apr, perEpoch)
}
