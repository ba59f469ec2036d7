// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		x, y, d int64
		down    int64
		up      int64
	}{
		{10, 3, 4, 7, 8},
		{10, 4, 5, 8, 8},
		{0, 5, 3, 0, 0},
		{1, 1, 3, 0, 1},
	}
	for _, tt := range tests {
		down, err := MulDiv(big.NewInt(tt.x), big.NewInt(tt.y), big.NewInt(tt.d))
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(tt.down).String(), down.String())

		up, err := MulDivUp(big.NewInt(tt.x), big.NewInt(tt.y), big.NewInt(tt.d))
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(tt.up).String(), up.String())
	}

	_, err := MulDiv(big.NewInt(1), big.NewInt(1), new(big.Int))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = MulDiv(big.NewInt(-1), big.NewInt(1), big.NewInt(1))
	assert.Error(t, err)
}

func TestMulDivWideProduct(t *testing.T) {
	maxU := new(uint256.Int).SetAllOne().ToBig()

	// the intermediate product exceeds 256 bits but the result fits
	got, err := MulDiv(maxU, maxU, maxU)
	require.NoError(t, err)
	assert.Equal(t, maxU, got)

	_, err = MulDiv(maxU, big.NewInt(2), big.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Add(maxU, big.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = MulDiv(new(big.Int).Add(maxU, big.NewInt(1)), big.NewInt(1), big.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestExchangeRate(t *testing.T) {
	totalShares := big.NewInt(101)
	totalStaked := big.NewInt(2)

	shares, err := SharesFor(big.NewInt(1), totalShares, totalStaked)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), shares)

	stake, err := StakeOf(big.NewInt(60), totalShares, totalStaked)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), stake)

	assert.Equal(t, big.NewInt(3), Min(big.NewInt(3), big.NewInt(5)))
	assert.Equal(t, big.NewInt(3), Min(big.NewInt(5), big.NewInt(3)))
}
