// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/thor"
)

func M(a ...any) []any {
	return a
}

func newTestState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return MustNew(db), db
}

func TestStateReadWrite(t *testing.T) {
	st, _ := newTestState(t)

	addr := thor.BytesToAddress([]byte("pool"))
	key := thor.BytesToBytes32([]byte("slot"))
	value := rlp.RawValue{0x82, 0x01, 0x02}

	assert.Equal(t, M(rlp.RawValue(nil), nil), M(st.GetRawStorage(addr, key)))

	st.SetRawStorage(addr, key, value)
	assert.Equal(t, M(value, nil), M(st.GetRawStorage(addr, key)))

	other := thor.BytesToAddress([]byte("other"))
	assert.Equal(t, M(rlp.RawValue(nil), nil), M(st.GetRawStorage(other, key)), "slots are scoped by address")
}

func TestStateRevert(t *testing.T) {
	st, _ := newTestState(t)

	addr := thor.BytesToAddress([]byte("pool"))
	key := thor.BytesToBytes32([]byte("slot"))

	st.SetRawStorage(addr, key, rlp.RawValue{0x01})
	chk := st.NewCheckpoint()
	st.SetRawStorage(addr, key, rlp.RawValue{0x02})
	st.NewCheckpoint()
	st.SetRawStorage(addr, key, rlp.RawValue{0x03})

	st.RevertTo(chk)
	assert.Equal(t, M(rlp.RawValue{0x01}, nil), M(st.GetRawStorage(addr, key)))
}

func TestStateCommit(t *testing.T) {
	st, db := newTestState(t)

	addr := thor.BytesToAddress([]byte("pool"))
	k1 := thor.BytesToBytes32([]byte("k1"))
	k2 := thor.BytesToBytes32([]byte("k2"))

	st.SetRawStorage(addr, k1, rlp.RawValue{0x01})
	st.SetRawStorage(addr, k2, rlp.RawValue{0x02})
	require.NoError(t, st.Commit())

	// reload from the same store, bypassing the cache
	reloaded := MustNew(db)
	assert.Equal(t, M(rlp.RawValue{0x01}, nil), M(reloaded.GetRawStorage(addr, k1)))

	st.SetRawStorage(addr, k1, nil)
	require.NoError(t, st.Commit())

	has, err := db.Has(append([]byte(StoreBucket), append(addr.Bytes(), k1.Bytes()...)...))
	require.NoError(t, err)
	assert.False(t, has, "empty value deletes the slot")

	assert.Equal(t, M(rlp.RawValue(nil), nil), M(MustNew(db).GetRawStorage(addr, k1)))
	assert.Equal(t, M(rlp.RawValue{0x02}, nil), M(MustNew(db).GetRawStorage(addr, k2)))
}

func TestStateCodec(t *testing.T) {
	st, _ := newTestState(t)

	addr := thor.BytesToAddress([]byte("pool"))
	key := thor.BytesToBytes32([]byte("n"))

	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	}))

	var n uint64
	require.NoError(t, st.DecodeStorage(addr, key, func(b []byte) error {
		return rlp.DecodeBytes(b, &n)
	}))
	assert.Equal(t, uint64(42), n)

	boom := errors.New("boom")
	err := st.EncodeStorage(addr, key, func() ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	var stateErr *Error
	err = st.DecodeStorage(addr, key, func([]byte) error { return boom })
	assert.ErrorAs(t, err, &stateErr)
}
