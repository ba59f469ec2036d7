// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checkpoint keeps versioned value histories in storage slots.
//
// A history is a contiguous vector of records: its length lives in the base slot and
// record i lives in thor.SlotAt(base, i). Versions are non-decreasing, and pushing at
// the version of the last record overwrites it, so a history grows by at most one
// record per version.
package checkpoint

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/thor"
)

// Record is a value that took effect at Version.
type Record[V any] struct {
	Version uint64
	Value   V
}

// Checkpoints is the history of one value.
type Checkpoints[V any] struct {
	context *solidity.Context
	base    thor.Bytes32
	length  *solidity.Raw[uint64]
}

func New[V any](context *solidity.Context, base thor.Bytes32) *Checkpoints[V] {
	return &Checkpoints[V]{
		context: context,
		base:    base,
		length:  solidity.NewRaw[uint64](context, base),
	}
}

func (c *Checkpoints[V]) record(i uint64) *solidity.Raw[Record[V]] {
	return solidity.NewRaw[Record[V]](c.context, thor.SlotAt(c.base, i))
}

// Len returns the number of stored records.
func (c *Checkpoints[V]) Len() (uint64, error) {
	return c.length.Get()
}

// RecordAt returns the i-th record.
func (c *Checkpoints[V]) RecordAt(i uint64) (Record[V], error) {
	return c.record(i).Get()
}

// Push records value at version. It overwrites the last record when the versions are equal.
// A version lower than the last one is rejected.
func (c *Checkpoints[V]) Push(version uint64, value V) error {
	n, err := c.length.Get()
	if err != nil {
		return err
	}
	if n > 0 {
		last, err := c.record(n - 1).Get()
		if err != nil {
			return err
		}
		if version < last.Version {
			return errors.Errorf("checkpoint: version %d precedes last version %d", version, last.Version)
		}
		if version == last.Version {
			return c.record(n - 1).Set(Record[V]{version, value})
		}
	}
	if err := c.record(n).Set(Record[V]{version, value}); err != nil {
		return err
	}
	return c.length.Set(n + 1)
}

// Latest returns the value of the last record, or the zero value if none.
func (c *Checkpoints[V]) Latest() (value V, err error) {
	n, err := c.length.Get()
	if err != nil || n == 0 {
		return value, err
	}
	last, err := c.record(n - 1).Get()
	if err != nil {
		return value, err
	}
	return last.Value, nil
}

// At returns the value of the last record whose version does not exceed version,
// or the zero value if there is none.
func (c *Checkpoints[V]) At(version uint64) (value V, err error) {
	n, err := c.length.Get()
	if err != nil || n == 0 {
		return value, err
	}

	// most lookups are for the present
	last, err := c.record(n - 1).Get()
	if err != nil {
		return value, err
	}
	if last.Version <= version {
		return last.Value, nil
	}

	lo, hi := uint64(0), n-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		rec, err := c.record(mid).Get()
		if err != nil {
			return value, err
		}
		if rec.Version <= version {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return value, nil
	}
	rec, err := c.record(lo - 1).Get()
	if err != nil {
		return value, err
	}
	return rec.Value, nil
}

// Map holds one history per key.
type Map[K solidity.Key, V any] struct {
	context *solidity.Context
	base    thor.Bytes32
}

func NewMap[K solidity.Key, V any](context *solidity.Context, base thor.Bytes32) *Map[K, V] {
	return &Map[K, V]{context: context, base: base}
}

// Of returns the history of key.
func (m *Map[K, V]) Of(key K) *Checkpoints[V] {
	return New[V](m.context, thor.Blake2b(key.Bytes(), m.base.Bytes()))
}
