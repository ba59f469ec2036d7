// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoint

import (
	"sort"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/bn"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

func newContext(t *testing.T) *solidity.Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return solidity.NewContext(thor.Address{1}, state.MustNew(db))
}

func TestCheckpointsEmpty(t *testing.T) {
	cp := New[bn.Int](newContext(t), thor.Bytes32{1})

	n, err := cp.Len()
	require.NoError(t, err)
	assert.Zero(t, n)

	v, err := cp.Latest()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = cp.At(100)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestCheckpointsLookup(t *testing.T) {
	cp := New[uint64](newContext(t), thor.Bytes32{1})

	require.NoError(t, cp.Push(10, 1))
	require.NoError(t, cp.Push(20, 2))
	require.NoError(t, cp.Push(30, 3))

	tests := []struct {
		version uint64
		want    uint64
	}{
		{0, 0},
		{9, 0},
		{10, 1},
		{15, 1},
		{19, 1},
		{20, 2},
		{29, 2},
		{30, 3},
		{1000, 3},
	}
	for _, tt := range tests {
		got, err := cp.At(tt.version)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "at %d", tt.version)
	}

	latest, err := cp.Latest()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), latest)
}

func TestCheckpointsSameVersionCompacts(t *testing.T) {
	cp := New[bn.Int](newContext(t), thor.Bytes32{1})

	for i := range uint64(5) {
		// read, mutate, write back at the current version
		v, err := cp.Latest()
		require.NoError(t, err)
		next := v.ToBig()
		next.SetUint64(next.Uint64() + i + 1)
		require.NoError(t, cp.Push(7, bn.FromBig(next)))
	}

	n, err := cp.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	v, err := cp.At(7)
	require.NoError(t, err)
	assert.Equal(t, "15", v.String())

	require.NoError(t, cp.Push(8, bn.FromUint64(1)))
	n, err = cp.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestCheckpointsRejectsOlderVersion(t *testing.T) {
	cp := New[uint64](newContext(t), thor.Bytes32{1})

	require.NoError(t, cp.Push(10, 1))
	assert.Error(t, cp.Push(9, 2))

	rec, err := cp.RecordAt(0)
	require.NoError(t, err)
	assert.Equal(t, Record[uint64]{10, 1}, rec)
}

func TestMapSeparatesKeys(t *testing.T) {
	m := NewMap[thor.Address, thor.Address](newContext(t), thor.Bytes32{2})
	a, b := thor.Address{1}, thor.Address{2}

	require.NoError(t, m.Of(a).Push(1, b))

	got, err := m.Of(a).At(1)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	got, err = m.Of(b).At(1)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

// TestCheckpointsMatchesLinearScan compares the binary search against a linear scan over
// randomly generated histories, and checks that versions never decrease.
func TestCheckpointsMatchesLinearScan(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for round := range 20 {
		cp := New[uint64](newContext(t), thor.BytesToBytes32([]byte{byte(round)}))

		var steps []uint8
		f.NumElements(1, 64).Fuzz(&steps)

		var (
			version uint64
			model   []Record[uint64]
		)
		for i, step := range steps {
			version += uint64(step % 4) // zero step overwrites
			value := uint64(i + 1)
			require.NoError(t, cp.Push(version, value))
			if len(model) > 0 && model[len(model)-1].Version == version {
				model[len(model)-1].Value = value
			} else {
				model = append(model, Record[uint64]{version, value})
			}
		}

		n, err := cp.Len()
		require.NoError(t, err)
		require.Equal(t, uint64(len(model)), n)

		var prev uint64
		for i := range n {
			rec, err := cp.RecordAt(i)
			require.NoError(t, err)
			assert.Equal(t, model[i], rec)
			assert.GreaterOrEqual(t, rec.Version, prev)
			prev = rec.Version
		}

		for q := uint64(0); q <= version+1; q++ {
			idx := sort.Search(len(model), func(i int) bool { return model[i].Version > q })
			var want uint64
			if idx > 0 {
				want = model[idx-1].Value
			}
			got, err := cp.At(q)
			require.NoError(t, err)
			assert.Equal(t, want, got, "round %d query %d", round, q)
		}
	}
}
