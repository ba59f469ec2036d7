// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/stackedmap"
	"github.com/vechain/stakepool/thor"
)

// StoreBucket is the kv bucket holding storage slots.
const StoreBucket = kv.Bucket("s")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) dbKey() []byte {
	return append(k.addr.Bytes(), k.key.Bytes()...)
}

// State manages storage slots with checkpoints over a kv store.
type State struct {
	store kv.Store
	cache *cache.LRU
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object.
// cacheSize is the number of committed slots kept in memory.
func New(store kv.Store, cacheSize int) (*State, error) {
	c, err := cache.NewLRU(cacheSize)
	if err != nil {
		return nil, &Error{err}
	}
	s := &State{
		store: StoreBucket.NewStore(store),
		cache: c,
	}
	s.sm = stackedmap.New(s.cacheGetter)
	return s, nil
}

// MustNew create state object with the default cache size.
func MustNew(store kv.Store) *State {
	s, err := New(store, 1024)
	if err != nil {
		panic(err)
	}
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key storageKey) (rlp.RawValue, bool, error) {
	v, err := s.cache.GetOrLoad(key, func(any) (any, error) {
		data, err := s.store.Get(key.dbKey())
		if err != nil {
			if s.store.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(data), nil
	})
	if err != nil {
		return nil, false, &Error{err}
	}
	raw := v.(rlp.RawValue)
	return raw, len(raw) > 0, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit writes all changes since the last commit into the kv store in one batch.
func (s *State) Commit() error {
	changes := make(map[storageKey]rlp.RawValue)
	var order []storageKey
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		if _, ok := changes[k]; !ok {
			order = append(order, k)
		}
		changes[k] = v
		return true
	})

	batch := s.store.NewBatch()
	var puts, deletes int64
	for _, k := range order {
		v := changes[k]
		if len(v) == 0 {
			if err := batch.Delete(k.dbKey()); err != nil {
				return &Error{err}
			}
			deletes++
		} else {
			if err := batch.Put(k.dbKey(), v); err != nil {
				return &Error{err}
			}
			puts++
		}
	}
	if batch.Len() > 0 {
		if err := batch.Write(); err != nil {
			return &Error{err}
		}
	}

	for _, k := range order {
		s.cache.Add(k, changes[k])
	}
	s.sm = stackedmap.New(s.cacheGetter)

	metricSlotWrites().AddWithLabel(puts, map[string]string{"type": "put"})
	metricSlotWrites().AddWithLabel(deletes, map[string]string{"type": "delete"})
	hit, miss := s.cache.Stats()
	metricCacheStats().SetWithLabel(hit, map[string]string{"type": "hit"})
	metricCacheStats().SetWithLabel(miss, map[string]string{"type": "miss"})
	return nil
}
