// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"strconv"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/staker/params"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/thor"
)

// PayOutClaim sends amount staked tokens to recipient. No share is burnt, so the loss is
// shared by every staker. At least one token must stay staked. Only claims managers call it.
func (p *Pool) PayOutClaim(caller, recipient thor.Address, amount *big.Int) error {
	logger.Debug("paying out claim", "manager", caller, "recipient", recipient, "amount", amount)
	err := p.write("payOutClaim", func(tx *txn) error {
		if err := tx.roles.RequireClaimsManager(caller); err != nil {
			return err
		}
		if recipient.IsZero() {
			return reverts.New(reverts.InvalidAddress, "recipient must not be the zero address")
		}
		if err := requirePositive(amount); err != nil {
			return err
		}
		if err := tx.shares.PayOut(amount, tx.block); err != nil {
			return err
		}
		if err := tx.ledger.Transfer(tx.addr, recipient, amount); err != nil {
			return errors.Wrap(err, "send claim")
		}
		_, totalStaked, err := tx.shares.Totals()
		if err != nil {
			return err
		}
		tx.emit(&Event{Kind: EventPaidOutClaim, User: caller, Counterparty: recipient, Amount: amount, Total: totalStaked})
		return nil
	})
	if err != nil {
		logger.Info("pay out claim failed", "recipient", recipient, "error", err)
		return err
	}
	logger.Info("paid out claim", "recipient", recipient, "amount", amount)
	return nil
}

// updateParam applies set on behalf of the admin and reports the new value.
func (p *Pool) updateParam(caller thor.Address, name, value string, set func() error) error {
	logger.Debug("updating parameter", "name", name, "value", value)
	err := p.write("setParameter", func(tx *txn) error {
		if err := tx.roles.RequireAdmin(caller); err != nil {
			return err
		}
		if err := set(); err != nil {
			return err
		}
		tx.emit(&Event{Kind: EventParameterUpdated, User: caller, Name: name, Value: value})
		return nil
	})
	if err != nil {
		logger.Info("update parameter failed", "name", name, "error", err)
		return err
	}
	logger.Info("updated parameter", "name", name, "value", value)
	return nil
}

func (p *Pool) SetStakeTarget(caller thor.Address, target *big.Int) error {
	return p.updateParam(caller, params.StakeTarget, target.String(), func() error {
		return p.params.SetStakeTarget(target)
	})
}

func (p *Pool) SetMinApr(caller thor.Address, apr *big.Int) error {
	return p.updateParam(caller, params.MinApr, apr.String(), func() error {
		return p.params.SetMinApr(apr)
	})
}

func (p *Pool) SetMaxApr(caller thor.Address, apr *big.Int) error {
	return p.updateParam(caller, params.MaxApr, apr.String(), func() error {
		return p.params.SetMaxApr(apr)
	})
}

func (p *Pool) SetAprUpdateStep(caller thor.Address, step *big.Int) error {
	return p.updateParam(caller, params.AprUpdateStep, step.String(), func() error {
		return p.params.SetAprUpdateStep(step)
	})
}

// SetUnstakeWaitPeriod changes the wait before a scheduled unstake matures. Pending requests keep their deadline.
func (p *Pool) SetUnstakeWaitPeriod(caller thor.Address, period uint64) error {
	return p.updateParam(caller, params.UnstakeWaitPeriod, strconv.FormatUint(period, 10), func() error {
		return p.params.SetUnstakeWaitPeriod(period)
	})
}

// updateRole applies set on behalf of the admin and reports the change.
func (p *Pool) updateRole(caller thor.Address, role string, addr thor.Address, enabled bool, set func() error) error {
	logger.Debug("updating role", "role", role, "address", addr, "enabled", enabled)
	err := p.write("setRole", func(tx *txn) error {
		if err := tx.roles.RequireAdmin(caller); err != nil {
			return err
		}
		if err := set(); err != nil {
			return err
		}
		tx.emit(&Event{Kind: EventRoleUpdated, User: caller, Counterparty: addr, Name: role, Value: strconv.FormatBool(enabled)})
		return nil
	})
	if err != nil {
		logger.Info("update role failed", "role", role, "address", addr, "error", err)
		return err
	}
	logger.Info("updated role", "role", role, "address", addr, "enabled", enabled)
	return nil
}

// TransferAdmin hands the admin role to admin.
func (p *Pool) TransferAdmin(caller, admin thor.Address) error {
	return p.updateRole(caller, params.RoleAdmin, admin, true, func() error {
		return p.roles.SetAdmin(admin)
	})
}

// SetTimelockManager replaces the timelock manager, the zero address disables vesting deposits.
func (p *Pool) SetTimelockManager(caller, manager thor.Address) error {
	return p.updateRole(caller, params.RoleTimelockManager, manager, !manager.IsZero(), func() error {
		return p.roles.SetTimelockManager(manager)
	})
}

func (p *Pool) SetClaimsManager(caller, manager thor.Address, enabled bool) error {
	return p.updateRole(caller, params.RoleClaimsManager, manager, enabled, func() error {
		return p.roles.SetClaimsManager(manager, enabled)
	})
}

func (p *Pool) SetVotingApp(caller, app thor.Address, enabled bool) error {
	return p.updateRole(caller, params.RoleVotingApp, app, enabled, func() error {
		return p.roles.SetVotingApp(app, enabled)
	})
}
