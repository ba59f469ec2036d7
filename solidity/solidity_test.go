// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

type TestStruct struct {
	Field1 uint64
	Field2 uint64
	Addr1  thor.Address
}

// newTestContext returns a fresh Context with in-memory DB.
func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(thor.Address{1}, state.MustNew(db))
}

func TestRaw(t *testing.T) {
	ctx := newTestContext(t)
	r := NewRaw[TestStruct](ctx, thor.Bytes32{1})

	v, err := r.Get()
	require.NoError(t, err)
	assert.Equal(t, TestStruct{}, v)

	set, err := r.IsSet()
	require.NoError(t, err)
	assert.False(t, set)

	want := TestStruct{Field1: 1, Field2: 2, Addr1: thor.Address{9}}
	require.NoError(t, r.Set(want))

	v, err = r.Get()
	require.NoError(t, err)
	assert.Equal(t, want, v)

	r.Delete()
	set, err = r.IsSet()
	require.NoError(t, err)
	assert.False(t, set)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{2})
	epochs := NewMapping[Uint64Key, TestStruct](ctx, thor.Bytes32{2})

	a, b := thor.Address{1}, thor.Address{2}
	require.NoError(t, m.Set(a, 10))
	require.NoError(t, m.Set(b, 20))

	va, err := m.Get(a)
	require.NoError(t, err)
	vb, err := m.Get(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), va)
	assert.Equal(t, uint64(20), vb)

	require.NoError(t, epochs.Set(Uint64Key(7), TestStruct{Field1: 7}))
	got, err := epochs.Get(Uint64Key(7))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.Field1)

	has, err := m.Has(a)
	require.NoError(t, err)
	assert.True(t, has)

	m.Delete(a)
	has, err = m.Has(a)
	require.NoError(t, err)
	assert.False(t, has)
	va, err = m.Get(a)
	require.NoError(t, err)
	assert.Zero(t, va)

	assert.NotEqual(t,
		m.Position(a),
		NewMapping[PairKey, uint64](ctx, thor.Bytes32{2}).Position(PairKey{a, b}))
	assert.NotEqual(t, PairKey{a, b}.Bytes(), PairKey{b, a}.Bytes())
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, thor.Bytes32{3})

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Add(big.NewInt(100)))
	require.NoError(t, u.Sub(big.NewInt(40)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(60), v)

	assert.ErrorIs(t, u.Sub(big.NewInt(61)), ErrUnderflow)

	maxU := new(uint256.Int).SetAllOne().ToBig()
	require.NoError(t, u.Set(maxU))
	assert.ErrorIs(t, u.Add(big.NewInt(1)), ErrOverflow)

	require.NoError(t, u.Set(new(big.Int)))
	set, err := u.raw.IsSet()
	require.NoError(t, err)
	assert.False(t, set, "zero clears the slot")
}
