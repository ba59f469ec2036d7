// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/stakepool/staker/account"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/thor"
)

// Delegate gives the voting power of the shares of user to delegate.
// Delegating to the current delegate changes nothing.
func (p *Pool) Delegate(user, delegate thor.Address) error {
	logger.Debug("delegating", "user", user, "delegate", delegate)
	err := p.write("delegate", func(tx *txn) error {
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		if delegate == tx.addr {
			return reverts.New(reverts.InvalidAddress, "cannot delegate to the pool")
		}
		if err := tx.delegations.CheckDelegate(user, delegate); err != nil {
			return err
		}
		current, err := tx.delegations.DelegateOf(user)
		if err != nil {
			return err
		}
		if current == delegate {
			return nil
		}
		if err := tx.requireCooldown(u); err != nil {
			return err
		}
		shares, err := tx.shares.SharesOf(user)
		if err != nil {
			return err
		}
		if err := tx.delegations.Delegate(user, delegate, shares, tx.block); err != nil {
			return err
		}
		u.LastDelegationUpdate = tx.now
		tx.emit(&Event{Kind: EventDelegated, User: user, Counterparty: delegate, Shares: shares})
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("delegate failed", "user", user, "delegate", delegate, "error", err)
		return err
	}
	logger.Info("delegated", "user", user, "delegate", delegate)
	return nil
}

// DelegateVotingPower is an alias of Delegate.
func (p *Pool) DelegateVotingPower(user, delegate thor.Address) error {
	return p.Delegate(user, delegate)
}

// Undelegate takes back the voting power user gave to its delegate.
func (p *Pool) Undelegate(user thor.Address) error {
	logger.Debug("undelegating", "user", user)
	err := p.write("undelegate", func(tx *txn) error {
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		current, err := tx.delegations.DelegateOf(user)
		if err != nil {
			return err
		}
		if current.IsZero() {
			return reverts.New(reverts.InvalidValue, "not delegating")
		}
		if err := tx.requireCooldown(u); err != nil {
			return err
		}
		shares, err := tx.shares.SharesOf(user)
		if err != nil {
			return err
		}
		if _, err := tx.delegations.Undelegate(user, shares, tx.block); err != nil {
			return err
		}
		u.LastDelegationUpdate = tx.now
		tx.emit(&Event{Kind: EventUndelegated, User: user, Counterparty: current, Shares: shares})
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("undelegate failed", "user", user, "error", err)
		return err
	}
	logger.Info("undelegated", "user", user)
	return nil
}

// UpdateLastProposalTimestamp records that user created a proposal, which blocks its
// delegation changes for an epoch. Only voting apps call it.
func (p *Pool) UpdateLastProposalTimestamp(caller, user thor.Address) error {
	logger.Debug("updating last proposal timestamp", "app", caller, "user", user)
	err := p.write("updateLastProposalTimestamp", func(tx *txn) error {
		if err := tx.roles.RequireVotingApp(caller); err != nil {
			return err
		}
		u, err := tx.user(user)
		if err != nil {
			return err
		}
		u.LastProposal = tx.now
		tx.emit(&Event{Kind: EventUpdatedLastProposalTimestamp, User: user, Counterparty: caller})
		return tx.accounts.Set(user, u)
	})
	if err != nil {
		logger.Info("update last proposal timestamp failed", "user", user, "error", err)
		return err
	}
	return nil
}

// requireCooldown rejects a delegation change within an epoch of the previous change
// or of the last proposal of the user.
func (tx *txn) requireCooldown(u *account.User) error {
	if u.LastDelegationUpdate != 0 && tx.now < u.LastDelegationUpdate+thor.EpochLength {
		return reverts.New(reverts.Unauthorized, "delegation changed within the last epoch")
	}
	if u.LastProposal != 0 && tx.now < u.LastProposal+thor.EpochLength {
		return reverts.New(reverts.Unauthorized, "proposal created within the last epoch")
	}
	return nil
}
