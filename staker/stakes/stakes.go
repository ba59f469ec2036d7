// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakes converts between shares and staked tokens.
// All arithmetic is bounded to 256 bits and rounds down unless stated otherwise.
package stakes

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrOverflow       = errors.New("stakes: uint256 overflow")
	ErrDivisionByZero = errors.New("stakes: division by zero")
)

func toU256(v *big.Int) (*uint256.Int, error) {
	if v.Sign() < 0 {
		return nil, errors.Errorf("stakes: negative operand %v", v)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return u, nil
}

// MulDiv returns floor(x * y / d) with a 512 bit intermediate product.
func MulDiv(x, y, d *big.Int) (*big.Int, error) {
	ux, err := toU256(x)
	if err != nil {
		return nil, err
	}
	uy, err := toU256(y)
	if err != nil {
		return nil, err
	}
	ud, err := toU256(d)
	if err != nil {
		return nil, err
	}
	if ud.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		return nil, ErrOverflow
	}
	return z.ToBig(), nil
}

// MulDivUp returns ceil(x * y / d).
func MulDivUp(x, y, d *big.Int) (*big.Int, error) {
	z, err := MulDiv(x, y, d)
	if err != nil {
		return nil, err
	}
	// the product is exact when z * d == x * y
	if new(big.Int).Mul(z, d).Cmp(new(big.Int).Mul(x, y)) != 0 {
		z.Add(z, big.NewInt(1))
	}
	return z, nil
}

// SharesFor returns the shares amount tokens are worth at the current rate.
func SharesFor(amount, totalShares, totalStaked *big.Int) (*big.Int, error) {
	return MulDiv(amount, totalShares, totalStaked)
}

// StakeOf returns the tokens shares are worth at the current rate.
func StakeOf(shares, totalShares, totalStaked *big.Int) (*big.Int, error) {
	return MulDiv(shares, totalStaked, totalShares)
}

// Add returns x + y, failing when the sum exceeds 256 bits.
func Add(x, y *big.Int) (*big.Int, error) {
	ux, err := toU256(x)
	if err != nil {
		return nil, err
	}
	uy, err := toU256(y)
	if err != nil {
		return nil, err
	}
	z, overflow := new(uint256.Int).AddOverflow(ux, uy)
	if overflow {
		return nil, ErrOverflow
	}
	return z.ToBig(), nil
}

// Min returns the smaller of x and y.
func Min(x, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return new(big.Int).Set(x)
	}
	return new(big.Int).Set(y)
}
