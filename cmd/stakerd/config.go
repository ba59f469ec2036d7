// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/staker/params"
	"github.com/vechain/stakepool/thor"
)

// Config describes the pool and token a new data dir is created with.
type Config struct {
	Pool  PoolConfig  `yaml:"pool"`
	Token TokenConfig `yaml:"token"`
}

type PoolConfig struct {
	Address         string        `yaml:"address"`
	Admin           string        `yaml:"admin"`
	TimelockManager string        `yaml:"timelockManager"`
	ClaimsManagers  []string      `yaml:"claimsManagers"`
	VotingApps      []string      `yaml:"votingApps"`
	Params          *ParamsConfig `yaml:"params"`
}

// ParamsConfig overrides the default pool parameters, amounts are decimal or 0x prefixed hex strings.
type ParamsConfig struct {
	StakeTarget       string `yaml:"stakeTarget"`
	MinApr            string `yaml:"minApr"`
	MaxApr            string `yaml:"maxApr"`
	AprUpdateStep     string `yaml:"aprUpdateStep"`
	UnstakeWaitPeriod uint64 `yaml:"unstakeWaitPeriod"`
}

type TokenConfig struct {
	Address     string       `yaml:"address"`
	Allocations []Allocation `yaml:"allocations"`
}

// Allocation credits Amount to Address at genesis. With ApprovePool the pool may spend it right away.
type Allocation struct {
	Address     string `yaml:"address"`
	Amount      string `yaml:"amount"`
	ApprovePool bool   `yaml:"approvePool"`
}

// genesis is a validated Config.
type genesis struct {
	token       thor.Address
	options     staker.Options
	allocations []allocation
}

type allocation struct {
	addr        thor.Address
	amount      *big.Int
	approvePool bool
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}

func parseAddr(field, s string) (thor.Address, error) {
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.Wrapf(err, "%s", field)
	}
	return *addr, nil
}

func parseAddrs(field string, ss []string) ([]thor.Address, error) {
	addrs := make([]thor.Address, 0, len(ss))
	for _, s := range ss {
		addr, err := parseAddr(field, s)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// parseAmount returns def for an empty string.
func parseAmount(field, s string, def *big.Int) (*big.Int, error) {
	if s == "" {
		return def, nil
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("%s: invalid amount %q", field, s)
	}
	return v, nil
}

func (c *Config) genesis() (*genesis, error) {
	var (
		g   genesis
		err error
	)
	if g.token, err = parseAddr("token.address", c.Token.Address); err != nil {
		return nil, err
	}
	if g.options.Address, err = parseAddr("pool.address", c.Pool.Address); err != nil {
		return nil, err
	}
	if g.token == g.options.Address {
		return nil, errors.New("token and pool must live at different addresses")
	}
	if g.options.Admin, err = parseAddr("pool.admin", c.Pool.Admin); err != nil {
		return nil, err
	}
	if g.options.Admin.IsZero() {
		return nil, errors.New("pool.admin must not be the zero address")
	}
	if c.Pool.TimelockManager != "" {
		if g.options.TimelockManager, err = parseAddr("pool.timelockManager", c.Pool.TimelockManager); err != nil {
			return nil, err
		}
	}
	if g.options.ClaimsManagers, err = parseAddrs("pool.claimsManagers", c.Pool.ClaimsManagers); err != nil {
		return nil, err
	}
	if g.options.VotingApps, err = parseAddrs("pool.votingApps", c.Pool.VotingApps); err != nil {
		return nil, err
	}

	if p := c.Pool.Params; p != nil {
		v := params.Defaults()
		if v.StakeTarget, err = parseAmount("pool.params.stakeTarget", p.StakeTarget, v.StakeTarget); err != nil {
			return nil, err
		}
		if v.MinApr, err = parseAmount("pool.params.minApr", p.MinApr, v.MinApr); err != nil {
			return nil, err
		}
		if v.MaxApr, err = parseAmount("pool.params.maxApr", p.MaxApr, v.MaxApr); err != nil {
			return nil, err
		}
		if v.AprUpdateStep, err = parseAmount("pool.params.aprUpdateStep", p.AprUpdateStep, v.AprUpdateStep); err != nil {
			return nil, err
		}
		if p.UnstakeWaitPeriod != 0 {
			v.UnstakeWaitPeriod = p.UnstakeWaitPeriod
		}
		if err := v.Validate(); err != nil {
			return nil, errors.Wrap(err, "pool.params")
		}
		g.options.Params = &v
	}

	for i, a := range c.Token.Allocations {
		addr, err := parseAddr("token.allocations.address", a.Address)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount("token.allocations.amount", a.Amount, nil)
		if err != nil {
			return nil, err
		}
		if amount == nil || amount.Sign() == 0 {
			return nil, errors.Errorf("token.allocations[%d]: amount must be positive", i)
		}
		g.allocations = append(g.allocations, allocation{addr: addr, amount: amount, approvePool: a.ApprovePool})
	}
	return &g, nil
}
