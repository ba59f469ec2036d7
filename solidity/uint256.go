// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/bn"
	"github.com/vechain/stakepool/thor"
)

var (
	ErrOverflow  = errors.New("uint256 overflow")
	ErrUnderflow = errors.New("uint256 underflow")
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
// Arithmetic fails rather than wraps.
type Uint256 struct {
	raw *Raw[bn.Int]
}

func NewUint256(context *Context, slot thor.Bytes32) *Uint256 {
	return &Uint256{raw: NewRaw[bn.Int](context, slot)}
}

func (u *Uint256) Get() (*big.Int, error) {
	v, err := u.raw.Get()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return ErrUnderflow
	}
	if _, overflow := uint256.FromBig(value); overflow {
		return ErrOverflow
	}
	if value.Sign() == 0 {
		u.raw.Delete()
		return nil
	}
	return u.raw.Set(bn.FromBig(value))
}

func (u *Uint256) Add(value *big.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(v.Add(v, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(v.Sub(v, value))
}
