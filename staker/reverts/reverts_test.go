// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(InvalidValue, "test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Equal(t, InvalidValue, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func TestKindOf(t *testing.T) {
	wrapped := errors.Wrap(Newf(Unauthorized, "cooldown until %d", 42), "delegate")
	assert.Equal(t, "delegate: cooldown until 42", wrapped.Error())

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, Unauthorized, kind)
	assert.True(t, Is(wrapped, Unauthorized))
	assert.False(t, Is(wrapped, InvalidAddress))

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	for _, tt := range []struct {
		kind Kind
		name string
	}{
		{InvalidValue, "InvalidValue"},
		{Unauthorized, "Unauthorized"},
		{InvalidAddress, "InvalidAddress"},
		{NoSuchEntity, "NoSuchEntity"},
		{Kind(9), "Kind(9)"},
	} {
		assert.Equal(t, tt.name, tt.kind.String())
	}
}
