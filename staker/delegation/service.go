// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package delegation tracks who delegates voting power to whom, and how many shares each delegate receives.
package delegation

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/bn"
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/checkpoint"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/staker/stakes"
	"github.com/vechain/stakepool/thor"
)

var (
	slotDelegates = thor.BytesToBytes32([]byte("delegates"))
	slotReceived  = thor.BytesToBytes32([]byte("received-delegation"))
)

type Service struct {
	delegates *checkpoint.Map[thor.Address, thor.Address]
	received  *checkpoint.Map[thor.Address, bn.Int]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		delegates: checkpoint.NewMap[thor.Address, thor.Address](sctx, slotDelegates),
		received:  checkpoint.NewMap[thor.Address, bn.Int](sctx, slotReceived),
	}
}

// DelegateOf returns the current delegate of user, zero when not delegating.
func (s *Service) DelegateOf(user thor.Address) (thor.Address, error) {
	return s.delegates.Of(user).Latest()
}

func (s *Service) DelegateAt(user thor.Address, version uint64) (thor.Address, error) {
	return s.delegates.Of(user).At(version)
}

func (s *Service) Received(delegate thor.Address) (*big.Int, error) {
	v, err := s.received.Of(delegate).Latest()
	return v.ToBig(), err
}

func (s *Service) ReceivedAt(delegate thor.Address, version uint64) (*big.Int, error) {
	v, err := s.received.Of(delegate).At(version)
	return v.ToBig(), err
}

// CheckDelegate validates a delegation from user to delegate.
func (s *Service) CheckDelegate(user, delegate thor.Address) error {
	if delegate.IsZero() {
		return reverts.New(reverts.InvalidAddress, "cannot delegate to the zero address")
	}
	if delegate == user {
		return reverts.New(reverts.InvalidAddress, "cannot delegate to self")
	}
	next, err := s.DelegateOf(delegate)
	if err != nil {
		return err
	}
	if !next.IsZero() {
		return reverts.New(reverts.InvalidAddress, "cannot delegate to an address that is delegating")
	}
	return nil
}

// Delegate moves shares of user from its current delegate, if any, to delegate.
func (s *Service) Delegate(user, delegate thor.Address, shares *big.Int, version uint64) error {
	current, err := s.DelegateOf(user)
	if err != nil {
		return err
	}
	if !current.IsZero() {
		if err := s.Sub(current, shares, version); err != nil {
			return err
		}
	}
	if err := s.Add(delegate, shares, version); err != nil {
		return err
	}
	return s.delegates.Of(user).Push(version, delegate)
}

// Undelegate returns the shares of user from its delegate.
func (s *Service) Undelegate(user thor.Address, shares *big.Int, version uint64) (thor.Address, error) {
	current, err := s.DelegateOf(user)
	if err != nil {
		return thor.Address{}, err
	}
	if current.IsZero() {
		return thor.Address{}, reverts.New(reverts.InvalidValue, "not delegating")
	}
	if err := s.Sub(current, shares, version); err != nil {
		return thor.Address{}, err
	}
	return current, s.delegates.Of(user).Push(version, thor.Address{})
}

// Add increases the shares received by delegate.
func (s *Service) Add(delegate thor.Address, shares *big.Int, version uint64) error {
	history := s.received.Of(delegate)
	cur, err := history.Latest()
	if err != nil {
		return err
	}
	sum, err := stakes.Add(cur.ToBig(), shares)
	if err != nil {
		return err
	}
	return history.Push(version, bn.FromBig(sum))
}

// Sub decreases the shares received by delegate.
func (s *Service) Sub(delegate thor.Address, shares *big.Int, version uint64) error {
	history := s.received.Of(delegate)
	cur, err := history.Latest()
	if err != nil {
		return err
	}
	rest := new(big.Int).Sub(cur.ToBig(), shares)
	if rest.Sign() < 0 {
		return errors.Errorf("delegation: received delegation of %v underflows", delegate)
	}
	return history.Push(version, bn.FromBig(rest))
}
