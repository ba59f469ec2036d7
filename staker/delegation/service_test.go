// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(thor.Address{1}, state.MustNew(db)))
}

func TestCheckDelegate(t *testing.T) {
	s := newService(t)
	a, b, c := thor.Address{0xa}, thor.Address{0xb}, thor.Address{0xc}

	require.NoError(t, s.Delegate(b, c, big.NewInt(1), 1))

	tests := []struct {
		name     string
		delegate thor.Address
		wantErr  bool
	}{
		{"zero", thor.Address{}, true},
		{"self", a, true},
		{"delegating", b, true},
		{"plain", c, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CheckDelegate(a, tt.delegate)
			if tt.wantErr {
				assert.True(t, reverts.Is(err, reverts.InvalidAddress))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDelegateHistory(t *testing.T) {
	s := newService(t)
	a, b, c := thor.Address{0xa}, thor.Address{0xb}, thor.Address{0xc}

	require.NoError(t, s.Delegate(a, b, big.NewInt(20), 10))
	require.NoError(t, s.Add(b, big.NewInt(5), 12))
	require.NoError(t, s.Delegate(a, c, big.NewInt(25), 20))

	tests := []struct {
		version  uint64
		delegate thor.Address
		b, c     int64
	}{
		{9, thor.Address{}, 0, 0},
		{10, b, 20, 0},
		{12, b, 25, 0},
		{20, c, 0, 25},
	}
	for _, tt := range tests {
		d, err := s.DelegateAt(a, tt.version)
		require.NoError(t, err)
		assert.Equal(t, tt.delegate, d)

		rb, err := s.ReceivedAt(b, tt.version)
		require.NoError(t, err)
		assert.Equal(t, tt.b, rb.Int64())

		rc, err := s.ReceivedAt(c, tt.version)
		require.NoError(t, err)
		assert.Equal(t, tt.c, rc.Int64())
	}

	prev, err := s.Undelegate(a, big.NewInt(25), 30)
	require.NoError(t, err)
	assert.Equal(t, c, prev)

	d, err := s.DelegateOf(a)
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	rc, err := s.Received(c)
	require.NoError(t, err)
	assert.Zero(t, rc.Sign())

	_, err = s.Undelegate(a, big.NewInt(1), 31)
	assert.True(t, reverts.Is(err, reverts.InvalidValue))

	assert.Error(t, s.Sub(b, big.NewInt(1), 32), "received delegation cannot go negative")
}
