// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"github.com/vechain/stakepool/solidity"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/thor"
)

var (
	slotAdmin           = thor.BytesToBytes32([]byte("admin"))
	slotTimelockManager = thor.BytesToBytes32([]byte("timelock-manager"))
	slotClaimsManagers  = thor.BytesToBytes32([]byte("claims-managers"))
	slotVotingApps      = thor.BytesToBytes32([]byte("voting-apps"))
)

// Role names, as reported in events.
const (
	RoleAdmin           = "admin"
	RoleTimelockManager = "timelockManager"
	RoleClaimsManager   = "claimsManager"
	RoleVotingApp       = "votingApp"
)

// Roles stores the addresses allowed to call privileged operations.
type Roles struct {
	admin           *solidity.Raw[thor.Address]
	timelockManager *solidity.Raw[thor.Address]
	claimsManagers  *solidity.Mapping[thor.Address, bool]
	votingApps      *solidity.Mapping[thor.Address, bool]
}

func NewRoles(sctx *solidity.Context) *Roles {
	return &Roles{
		admin:           solidity.NewRaw[thor.Address](sctx, slotAdmin),
		timelockManager: solidity.NewRaw[thor.Address](sctx, slotTimelockManager),
		claimsManagers:  solidity.NewMapping[thor.Address, bool](sctx, slotClaimsManagers),
		votingApps:      solidity.NewMapping[thor.Address, bool](sctx, slotVotingApps),
	}
}

func (r *Roles) Admin() (thor.Address, error) {
	return r.admin.Get()
}

func (r *Roles) TimelockManager() (thor.Address, error) {
	return r.timelockManager.Get()
}

func (r *Roles) IsClaimsManager(addr thor.Address) (bool, error) {
	return r.claimsManagers.Get(addr)
}

func (r *Roles) IsVotingApp(addr thor.Address) (bool, error) {
	return r.votingApps.Get(addr)
}

// SetAdmin replaces the admin. The zero address is rejected.
func (r *Roles) SetAdmin(addr thor.Address) error {
	if addr.IsZero() {
		return reverts.New(reverts.InvalidAddress, "admin must not be the zero address")
	}
	return r.admin.Set(addr)
}

// SetTimelockManager replaces the timelock manager. The zero address disables vesting deposits.
func (r *Roles) SetTimelockManager(addr thor.Address) error {
	return r.timelockManager.Set(addr)
}

func (r *Roles) SetClaimsManager(addr thor.Address, enabled bool) error {
	if addr.IsZero() {
		return reverts.New(reverts.InvalidAddress, "claims manager must not be the zero address")
	}
	if !enabled {
		r.claimsManagers.Delete(addr)
		return nil
	}
	return r.claimsManagers.Set(addr, true)
}

func (r *Roles) SetVotingApp(addr thor.Address, enabled bool) error {
	if addr.IsZero() {
		return reverts.New(reverts.InvalidAddress, "voting app must not be the zero address")
	}
	if !enabled {
		r.votingApps.Delete(addr)
		return nil
	}
	return r.votingApps.Set(addr, true)
}

// RequireAdmin rejects callers other than the admin.
func (r *Roles) RequireAdmin(caller thor.Address) error {
	admin, err := r.admin.Get()
	if err != nil {
		return err
	}
	if admin.IsZero() || admin != caller {
		return reverts.New(reverts.Unauthorized, "caller is not the admin")
	}
	return nil
}

// RequireTimelockManager rejects callers other than the timelock manager.
func (r *Roles) RequireTimelockManager(caller thor.Address) error {
	manager, err := r.timelockManager.Get()
	if err != nil {
		return err
	}
	if manager.IsZero() || manager != caller {
		return reverts.New(reverts.Unauthorized, "caller is not the timelock manager")
	}
	return nil
}

// RequireClaimsManager rejects callers without the claims manager role.
func (r *Roles) RequireClaimsManager(caller thor.Address) error {
	ok, err := r.claimsManagers.Get(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.Unauthorized, "caller is not a claims manager")
	}
	return nil
}

// RequireVotingApp rejects callers without the voting app role.
func (r *Roles) RequireVotingApp(caller thor.Address) error {
	ok, err := r.votingApps.Get(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.Unauthorized, "caller is not a voting app")
	}
	return nil
}
