// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
	"github.com/vechain/stakepool/token"
)

const validConfig = `
pool:
  address: "0x0000000000000000000000000000000000001000"
  admin: "0x0000000000000000000000000000000000000a01"
  timelockManager: "0x0000000000000000000000000000000000000a02"
  claimsManagers:
    - "0x0000000000000000000000000000000000000a03"
  votingApps:
    - "0x0000000000000000000000000000000000000a04"
  params:
    stakeTarget: "1000000"
    maxApr: "0x3938700"
    unstakeWaitPeriod: 1209600
token:
  address: "0x0000000000000000000000000000000000002000"
  allocations:
    - address: "0x0000000000000000000000000000000000000b01"
      amount: "5000"
      approvePool: true
    - address: "0x0000000000000000000000000000000000000b02"
      amount: "7000"
`

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]byte(validConfig))
	require.NoError(t, err)

	g, err := cfg.genesis()
	require.NoError(t, err)

	assert.Equal(t, thor.MustParseAddress("0x0000000000000000000000000000000000002000"), g.token)
	assert.Equal(t, thor.MustParseAddress("0x0000000000000000000000000000000000001000"), g.options.Address)
	assert.Equal(t, thor.MustParseAddress("0x0000000000000000000000000000000000000a01"), g.options.Admin)
	assert.Equal(t, thor.MustParseAddress("0x0000000000000000000000000000000000000a02"), g.options.TimelockManager)
	assert.Len(t, g.options.ClaimsManagers, 1)
	assert.Len(t, g.options.VotingApps, 1)

	require.NotNil(t, g.options.Params)
	assert.Equal(t, "1000000", g.options.Params.StakeTarget.String())
	assert.Equal(t, "60000000", g.options.Params.MaxApr.String())
	assert.Equal(t, thor.InitialMinApr.String(), g.options.Params.MinApr.String(), "unset params keep the default")
	assert.Equal(t, uint64(1209600), g.options.Params.UnstakeWaitPeriod)

	require.Len(t, g.allocations, 2)
	assert.Equal(t, "5000", g.allocations[0].amount.String())
	assert.True(t, g.allocations[0].approvePool)
	assert.False(t, g.allocations[1].approvePool)
}

func TestParseConfigErrors(t *testing.T) {
	const (
		pool  = "0x0000000000000000000000000000000000001000"
		tok   = "0x0000000000000000000000000000000000002000"
		admin = "0x0000000000000000000000000000000000000a01"
	)
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "pool:\n  foo: bar\n"},
		{"bad pool address", "pool:\n  address: \"0x12\"\n  admin: \"" + admin + "\"\ntoken:\n  address: \"" + tok + "\"\n"},
		{"zero admin", "pool:\n  address: \"" + pool + "\"\n  admin: \"0x0000000000000000000000000000000000000000\"\ntoken:\n  address: \"" + tok + "\"\n"},
		{"same address", "pool:\n  address: \"" + pool + "\"\n  admin: \"" + admin + "\"\ntoken:\n  address: \"" + pool + "\"\n"},
		{"invalid params", "pool:\n  address: \"" + pool + "\"\n  admin: \"" + admin + "\"\n  params:\n    minApr: \"90000000\"\n    maxApr: \"1\"\ntoken:\n  address: \"" + tok + "\"\n"},
		{"short wait period", "pool:\n  address: \"" + pool + "\"\n  admin: \"" + admin + "\"\n  params:\n    unstakeWaitPeriod: 60\ntoken:\n  address: \"" + tok + "\"\n"},
		{"bad amount", "pool:\n  address: \"" + pool + "\"\n  admin: \"" + admin + "\"\ntoken:\n  address: \"" + tok + "\"\n  allocations:\n    - address: \"" + admin + "\"\n      amount: \"-5\"\n"},
		{"zero amount", "pool:\n  address: \"" + pool + "\"\n  admin: \"" + admin + "\"\ntoken:\n  address: \"" + tok + "\"\n  allocations:\n    - address: \"" + admin + "\"\n      amount: \"0\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseConfig([]byte(tt.yaml))
			if err == nil {
				_, err = cfg.genesis()
			}
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000001000", cfg.Pool.Address)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyAllocations(t *testing.T) {
	cfg, err := parseConfig([]byte(validConfig))
	require.NoError(t, err)
	g, err := cfg.genesis()
	require.NoError(t, err)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.MustNew(db)
	tok := token.New(g.token, st)
	require.NoError(t, applyAllocations(st, tok, g))

	holder := g.allocations[0].addr
	balance, err := tok.BalanceOf(holder)
	require.NoError(t, err)
	assert.Equal(t, "5000", balance.String())
	allowance, err := tok.Allowance(holder, g.options.Address)
	require.NoError(t, err)
	assert.Equal(t, "5000", allowance.String())
	allowance, err = tok.Allowance(g.allocations[1].addr, g.options.Address)
	require.NoError(t, err)
	assert.Equal(t, "0", allowance.String())

	minter, err := tok.IsMinter(g.options.Address)
	require.NoError(t, err)
	assert.True(t, minter)

	// a second start leaves the balances alone
	require.NoError(t, applyAllocations(st, tok, g))
	supply, err := tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, "12000", supply.String())

	p, err := staker.New(st, tok, staker.NewManualClock(100*thor.EpochLength), g.options)
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.DepositAndStake(holder, big.NewInt(5000)))
	v, err := p.Params()
	require.NoError(t, err)
	assert.Equal(t, "1000000", v.StakeTarget.String())
}
