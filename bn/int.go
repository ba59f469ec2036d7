// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bn

import (
	"errors"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

var big0 = new(big.Int)

var errNegative = errors.New("bn: negative value")

// Int wraps an unsigned big.Int.
// It can be used as a value without state sharing, the zero value presents 0.
type Int struct {
	value *big.Int
}

// FromBig create a bn.Int object from big.Int.
func FromBig(bi *big.Int) Int {
	i := Int{}
	i.SetBig(bi)
	return i
}

// FromUint64 create a bn.Int object from uint64.
func FromUint64(v uint64) Int {
	return FromBig(new(big.Int).SetUint64(v))
}

// ToBig convert to big.Int.
func (i Int) ToBig() *big.Int {
	if i.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.value)
}

// SetBig set big.Int.
func (i *Int) SetBig(bi *big.Int) {
	if bi == nil || bi.Sign() == 0 {
		i.value = nil
		return
	}
	i.value = new(big.Int).Set(bi)
}

// IsZero returns true if bn.Int presents a zero value.
func (i Int) IsZero() bool {
	return i.value == nil || i.value.Sign() == 0
}

// Cmp compares with another bn.Int.
// Returns:
//
//	-1 if i <  other
//	 0 if i == other
//	+1 if i >  other
func (i Int) Cmp(other Int) int {
	if i.value == nil {
		if other.value == nil {
			return 0
		}
		return -other.value.Sign()
	}

	if other.value == nil {
		return i.value.Sign()
	}
	return i.value.Cmp(other.value)
}

// CmpBig compares with big.Int value.
func (i Int) CmpBig(bi *big.Int) int {
	if i.value == nil {
		return -bi.Sign()
	}
	return i.value.Cmp(bi)
}

// EncodeRLP implements rlp.Encoder.
func (i Int) EncodeRLP(w io.Writer) error {
	if i.value != nil && i.value.Sign() < 0 {
		return errNegative
	}
	return rlp.Encode(w, i.ToBig())
}

// DecodeRLP implements rlp.Decoder.
func (i *Int) DecodeRLP(s *rlp.Stream) error {
	var bi big.Int
	if err := s.Decode(&bi); err != nil {
		return err
	}
	i.SetBig(&bi)
	return nil
}

// String implements Stringer.
func (i Int) String() string {
	if i.value == nil {
		return big0.String()
	}
	return i.value.String()
}

// MarshalJSON implements the json.Marshaler interface.
// Amounts are rendered as decimal strings to survive javascript clients.
func (i Int) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Both quoted and bare decimal numbers are accepted.
func (i *Int) UnmarshalJSON(text []byte) error {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = text[1 : len(text)-1]
	}
	bi, ok := new(big.Int).SetString(string(text), 10)
	if !ok {
		return errors.New("bn: invalid number " + string(text))
	}
	if bi.Sign() < 0 {
		return errNegative
	}
	i.SetBig(bi)
	return nil
}
