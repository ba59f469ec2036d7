// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params stores the privileged pool parameters and role assignments.
package params

import (
	"math/big"

	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/thor"
)

var (
	slotStakeTarget       = thor.BytesToBytes32([]byte("stake-target"))
	slotMinApr            = thor.BytesToBytes32([]byte("min-apr"))
	slotMaxApr            = thor.BytesToBytes32([]byte("max-apr"))
	slotAprUpdateStep     = thor.BytesToBytes32([]byte("apr-update-step"))
	slotUnstakeWaitPeriod = thor.BytesToBytes32([]byte("unstake-wait-period"))
)

// Parameter names, as reported in events.
const (
	StakeTarget       = "stakeTarget"
	MinApr            = "minApr"
	MaxApr            = "maxApr"
	AprUpdateStep     = "aprUpdateStep"
	UnstakeWaitPeriod = "unstakeWaitPeriod"
)

// Values is a snapshot of all parameters.
type Values struct {
	StakeTarget       *big.Int
	MinApr            *big.Int
	MaxApr            *big.Int
	AprUpdateStep     *big.Int
	UnstakeWaitPeriod uint64
}

// Defaults returns the parameters a new pool starts with.
func Defaults() Values {
	return Values{
		StakeTarget:       new(big.Int).Set(thor.InitialStakeTarget),
		MinApr:            new(big.Int).Set(thor.InitialMinApr),
		MaxApr:            new(big.Int).Set(thor.InitialMaxApr),
		AprUpdateStep:     new(big.Int).Set(thor.InitialAprUpdateStep),
		UnstakeWaitPeriod: thor.InitialUnstakeWaitPeriod,
	}
}

// Validate checks the invariants between parameters.
func (v Values) Validate() error {
	if v.StakeTarget == nil || v.StakeTarget.Sign() <= 0 {
		return reverts.New(reverts.InvalidValue, "stake target must be positive")
	}
	if v.MinApr == nil || v.MaxApr == nil || v.MinApr.Sign() < 0 || v.MinApr.Cmp(v.MaxApr) > 0 {
		return reverts.New(reverts.InvalidValue, "min apr must not exceed max apr")
	}
	if v.AprUpdateStep == nil || v.AprUpdateStep.Sign() < 0 {
		return reverts.New(reverts.InvalidValue, "apr update step must not be negative")
	}
	if v.UnstakeWaitPeriod < thor.EpochLength {
		return reverts.Newf(reverts.InvalidValue, "unstake wait period must be at least %d", thor.EpochLength)
	}
	if v.UnstakeWaitPeriod > thor.MaxUnstakeWaitPeriod {
		return reverts.Newf(reverts.InvalidValue, "unstake wait period must not exceed %d", thor.MaxUnstakeWaitPeriod)
	}
	return nil
}

// Params holds the storage backed pool parameters.
type Params struct {
	stakeTarget       *solidity.Uint256
	minApr            *solidity.Uint256
	maxApr            *solidity.Uint256
	aprUpdateStep     *solidity.Uint256
	unstakeWaitPeriod *solidity.Raw[uint64]
}

func New(sctx *solidity.Context) *Params {
	return &Params{
		stakeTarget:       solidity.NewUint256(sctx, slotStakeTarget),
		minApr:            solidity.NewUint256(sctx, slotMinApr),
		maxApr:            solidity.NewUint256(sctx, slotMaxApr),
		aprUpdateStep:     solidity.NewUint256(sctx, slotAprUpdateStep),
		unstakeWaitPeriod: solidity.NewRaw[uint64](sctx, slotUnstakeWaitPeriod),
	}
}

// Init stores the initial parameters.
func (p *Params) Init(v Values) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := p.stakeTarget.Set(v.StakeTarget); err != nil {
		return err
	}
	if err := p.minApr.Set(v.MinApr); err != nil {
		return err
	}
	if err := p.maxApr.Set(v.MaxApr); err != nil {
		return err
	}
	if err := p.aprUpdateStep.Set(v.AprUpdateStep); err != nil {
		return err
	}
	return p.unstakeWaitPeriod.Set(v.UnstakeWaitPeriod)
}

// Get returns all parameters.
func (p *Params) Get() (v Values, err error) {
	if v.StakeTarget, err = p.stakeTarget.Get(); err != nil {
		return
	}
	if v.MinApr, err = p.minApr.Get(); err != nil {
		return
	}
	if v.MaxApr, err = p.maxApr.Get(); err != nil {
		return
	}
	if v.AprUpdateStep, err = p.aprUpdateStep.Get(); err != nil {
		return
	}
	v.UnstakeWaitPeriod, err = p.unstakeWaitPeriod.Get()
	return
}

func (p *Params) UnstakeWaitPeriod() (uint64, error) {
	return p.unstakeWaitPeriod.Get()
}

// update applies fn to the current values, validates and stores the result.
func (p *Params) update(fn func(v *Values)) error {
	v, err := p.Get()
	if err != nil {
		return err
	}
	fn(&v)
	if err := v.Validate(); err != nil {
		return err
	}
	return p.Init(v)
}

func (p *Params) SetStakeTarget(target *big.Int) error {
	return p.update(func(v *Values) { v.StakeTarget = target })
}

func (p *Params) SetMinApr(apr *big.Int) error {
	return p.update(func(v *Values) { v.MinApr = apr })
}

func (p *Params) SetMaxApr(apr *big.Int) error {
	return p.update(func(v *Values) { v.MaxApr = apr })
}

func (p *Params) SetAprUpdateStep(step *big.Int) error {
	return p.update(func(v *Values) { v.AprUpdateStep = step })
}

func (p *Params) SetUnstakeWaitPeriod(period uint64) error {
	return p.update(func(v *Values) { v.UnstakeWaitPeriod = period })
}
