// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token provides the fungible token the staking pool moves funds with.
package token

import (
	"math/big"

	"github.com/vechain/stakepool/bn"
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/staker/stakes"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

// Ledger is the token surface consumed by the pool.
type Ledger interface {
	BalanceOf(addr thor.Address) (*big.Int, error)
	// TransferFrom moves amount from holder to to, spending the allowance holder gave spender.
	TransferFrom(spender, holder, to thor.Address, amount *big.Int) error
	Transfer(from, to thor.Address, amount *big.Int) error
	// Mint creates amount for to. It fails unless minter holds the minting privilege.
	Mint(minter, to thor.Address, amount *big.Int) error
	IsMinter(addr thor.Address) (bool, error)
}

var (
	slotBalances    = thor.BytesToBytes32([]byte("balances"))
	slotAllowances  = thor.BytesToBytes32([]byte("allowances"))
	slotMinters     = thor.BytesToBytes32([]byte("minters"))
	slotTotalSupply = thor.BytesToBytes32([]byte("total-supply"))
)

var _ Ledger = (*Token)(nil)

// Token is a token kept in the storage of its own account. Sharing the state with the pool
// makes transfers part of the same all-or-nothing transaction.
type Token struct {
	balances    *solidity.Mapping[thor.Address, bn.Int]
	allowances  *solidity.Mapping[solidity.PairKey, bn.Int]
	minters     *solidity.Mapping[thor.Address, bool]
	totalSupply *solidity.Uint256
}

func New(addr thor.Address, state *state.State) *Token {
	sctx := solidity.NewContext(addr, state)
	return &Token{
		balances:    solidity.NewMapping[thor.Address, bn.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[solidity.PairKey, bn.Int](sctx, slotAllowances),
		minters:     solidity.NewMapping[thor.Address, bool](sctx, slotMinters),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
	}
}

func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	b, err := t.balances.Get(addr)
	return b.ToBig(), err
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) Allowance(holder, spender thor.Address) (*big.Int, error) {
	a, err := t.allowances.Get(solidity.PairKey{First: holder, Second: spender})
	return a.ToBig(), err
}

func (t *Token) Approve(holder, spender thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidValue, "negative allowance")
	}
	return t.allowances.Set(solidity.PairKey{First: holder, Second: spender}, bn.FromBig(amount))
}

func (t *Token) IsMinter(addr thor.Address) (bool, error) {
	return t.minters.Get(addr)
}

func (t *Token) SetMinter(addr thor.Address, enabled bool) error {
	if !enabled {
		t.minters.Delete(addr)
		return nil
	}
	return t.minters.Set(addr, true)
}

func (t *Token) setBalance(addr thor.Address, balance *big.Int) error {
	if balance.Sign() == 0 {
		t.balances.Delete(addr)
		return nil
	}
	return t.balances.Set(addr, bn.FromBig(balance))
}

func (t *Token) Transfer(from, to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidValue, "negative amount")
	}
	balance, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return reverts.New(reverts.InvalidValue, "insufficient balance")
	}
	if err := t.setBalance(from, balance.Sub(balance, amount)); err != nil {
		return err
	}
	received, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	sum, err := stakes.Add(received, amount)
	if err != nil {
		return err
	}
	return t.setBalance(to, sum)
}

func (t *Token) TransferFrom(spender, holder, to thor.Address, amount *big.Int) error {
	allowance, err := t.Allowance(holder, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return reverts.New(reverts.InvalidValue, "insufficient allowance")
	}
	if err := t.Transfer(holder, to, amount); err != nil {
		return err
	}
	return t.Approve(holder, spender, allowance.Sub(allowance, amount))
}

func (t *Token) Mint(minter, to thor.Address, amount *big.Int) error {
	ok, err := t.IsMinter(minter)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.Unauthorized, "not a minter")
	}
	return t.Allocate(to, amount)
}

// Allocate credits amount to addr without the minting privilege. Used for genesis balances.
func (t *Token) Allocate(to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvalidValue, "negative amount")
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	balance, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	sum, err := stakes.Add(balance, amount)
	if err != nil {
		return err
	}
	return t.setBalance(to, sum)
}
