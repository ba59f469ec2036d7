// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/vechain/stakepool/thor"
)

type Key interface {
	Bytes() []byte
}

// Uint64Key keys a mapping by a number, such as an epoch index.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

// PairKey keys a mapping by two addresses.
type PairKey struct {
	First, Second thor.Address
}

func (k PairKey) Bytes() []byte {
	return append(k.First.Bytes(), k.Second.Bytes()...)
}

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
// Each entry lives in its own slot derived from the key and the base position.
type Mapping[K Key, V any] struct {
	context *Context
	basePos thor.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos thor.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) slot(key K) *Raw[V] {
	return NewRaw[V](m.context, thor.Blake2b(key.Bytes(), m.basePos.Bytes()))
}

// Position returns the base position of the entry for key.
// Nested structures use it as their own base.
func (m *Mapping[K, V]) Position(key K) thor.Bytes32 {
	return thor.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (V, error) {
	return m.slot(key).Get()
}

// Has returns whether an entry exists for key.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	return m.slot(key).IsSet()
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.slot(key).Set(value)
}

func (m *Mapping[K, V]) Delete(key K) {
	m.slot(key).Delete()
}
