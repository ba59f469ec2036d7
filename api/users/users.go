// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package users

import (
	"math"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/api/utils/types"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

type Users struct {
	pool         *staker.Pool
	enableWrites bool
}

func New(pool *staker.Pool, enableWrites bool) *Users {
	return &Users{
		pool,
		enableWrites,
	}
}

func (u *Users) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	info, err := u.pool.UserInfo(addr)
	if err != nil {
		return utils.FromRevert(err)
	}
	return utils.WriteJSON(w, convertUser(addr, info))
}

func (u *Users) handleGetVotingPower(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	version, err := utils.Uint64Query(req, "version", math.MaxUint64)
	if err != nil {
		return err
	}
	snap, err := u.pool.VotingSnapshotAt(version, addr)
	if err != nil {
		return err
	}
	vp := &VotingPower{
		Version:     version,
		Shares:      types.Amount(snap.Shares),
		Received:    types.Amount(snap.Received),
		VotingPower: types.Amount(snap.VotingPower),
	}
	if !snap.Delegate.IsZero() {
		vp.Delegate = &snap.Delegate
	}
	return utils.WriteJSON(w, vp)
}

func (u *Users) handleGetTimelock(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	source, err := utils.AddressVar(req, "source")
	if err != nil {
		return err
	}
	lock, err := u.pool.Timelock(addr, source)
	if err != nil {
		return utils.FromRevert(err)
	}
	return utils.WriteJSON(w, &Timelock{
		Total:     types.Amount(lock.Total.ToBig()),
		Remaining: types.Amount(lock.Remaining.ToBig()),
		Start:     lock.Start,
		End:       lock.End,
	})
}

func parseAmount(req *http.Request) (*big.Int, error) {
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return nil, utils.BadRequest(errors.New("body: amount is required"))
	}
	return (*big.Int)(body.Amount), nil
}

// amountHandler runs op for the user in the path with the amount in the body and responds the user state.
func (u *Users) amountHandler(op func(addr thor.Address, amount *big.Int) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		addr, err := utils.AddressVar(req, "address")
		if err != nil {
			return err
		}
		amount, err := parseAmount(req)
		if err != nil {
			return err
		}
		if err := op(addr, amount); err != nil {
			return utils.FromRevert(err)
		}
		return u.handleGetUser(w, req)
	}
}

func (u *Users) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body DepositRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount is required"))
	}
	if body.Stake {
		err = u.pool.DepositAndStake(addr, (*big.Int)(body.Amount))
	} else {
		err = u.pool.Deposit(addr, (*big.Int)(body.Amount))
	}
	if err != nil {
		return utils.FromRevert(err)
	}
	return u.handleGetUser(w, req)
}

func (u *Users) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body UnstakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var redeemed *big.Int
	if body.Withdraw {
		redeemed, err = u.pool.UnstakeAndWithdraw(addr)
	} else {
		redeemed, err = u.pool.Unstake(addr)
	}
	if err != nil {
		return utils.FromRevert(err)
	}
	return utils.WriteJSON(w, &Unstaked{Amount: types.Amount(redeemed)})
}

func (u *Users) handleDelegate(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body DelegateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Delegate == nil {
		return utils.BadRequest(errors.New("body: delegate is required"))
	}
	if err := u.pool.Delegate(addr, *body.Delegate); err != nil {
		return utils.FromRevert(err)
	}
	return u.handleGetUser(w, req)
}

func (u *Users) handleUndelegate(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	if err := u.pool.Undelegate(addr); err != nil {
		return utils.FromRevert(err)
	}
	return u.handleGetUser(w, req)
}

func (u *Users) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /users/{address}").
		HandlerFunc(utils.WrapHandlerFunc(u.handleGetUser))
	sub.Path("/{address}/voting-power").
		Methods(http.MethodGet).
		Name("GET /users/{address}/voting-power").
		HandlerFunc(utils.WrapHandlerFunc(u.handleGetVotingPower))
	sub.Path("/{address}/timelocks/{source}").
		Methods(http.MethodGet).
		Name("GET /users/{address}/timelocks/{source}").
		HandlerFunc(utils.WrapHandlerFunc(u.handleGetTimelock))

	if !u.enableWrites {
		return
	}
	sub.Path("/{address}/deposit").
		Methods(http.MethodPost).
		Name("POST /users/{address}/deposit").
		HandlerFunc(utils.WrapHandlerFunc(u.handleDeposit))
	sub.Path("/{address}/withdraw").
		Methods(http.MethodPost).
		Name("POST /users/{address}/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(u.amountHandler(u.pool.Withdraw)))
	sub.Path("/{address}/stake").
		Methods(http.MethodPost).
		Name("POST /users/{address}/stake").
		HandlerFunc(utils.WrapHandlerFunc(u.amountHandler(u.pool.Stake)))
	sub.Path("/{address}/unstake-request").
		Methods(http.MethodPost).
		Name("POST /users/{address}/unstake-request").
		HandlerFunc(utils.WrapHandlerFunc(u.amountHandler(u.pool.ScheduleUnstake)))
	sub.Path("/{address}/unstake").
		Methods(http.MethodPost).
		Name("POST /users/{address}/unstake").
		HandlerFunc(utils.WrapHandlerFunc(u.handleUnstake))
	sub.Path("/{address}/delegate").
		Methods(http.MethodPost).
		Name("POST /users/{address}/delegate").
		HandlerFunc(utils.WrapHandlerFunc(u.handleDelegate))
	sub.Path("/{address}/undelegate").
		Methods(http.MethodPost).
		Name("POST /users/{address}/undelegate").
		HandlerFunc(utils.WrapHandlerFunc(u.handleUndelegate))
}
