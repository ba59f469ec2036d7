// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/thor"
)

// Raw is an rlp encoded value stored in a single slot.
// V must not be a pointer type, an unset slot decodes to the zero value of V.
type Raw[V any] struct {
	context *Context
	pos     thor.Bytes32
}

func NewRaw[V any](context *Context, pos thor.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: pos}
}

func (r *Raw[V]) Get() (value V, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// IsSet returns whether the slot holds a value.
func (r *Raw[V]) IsSet() (bool, error) {
	raw, err := r.context.state.GetRawStorage(r.context.address, r.pos)
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

func (r *Raw[V]) Set(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the slot.
func (r *Raw[V]) Delete() {
	r.context.state.SetRawStorage(r.context.address, r.pos, nil)
}
