// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/api/utils/types"
	"github.com/vechain/stakepool/staker"
)

type Pool struct {
	pool         *staker.Pool
	enableWrites bool
}

func New(pool *staker.Pool, enableWrites bool) *Pool {
	return &Pool{
		pool,
		enableWrites,
	}
}

func (p *Pool) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	totalShares, totalStaked, err := p.pool.Totals()
	if err != nil {
		return err
	}
	apr, err := p.pool.CurrentApr()
	if err != nil {
		return err
	}
	genesis, err := p.pool.GenesisEpoch()
	if err != nil {
		return err
	}
	last, err := p.pool.EpochIndexOfLastReward()
	if err != nil {
		return err
	}
	values, err := p.pool.Params()
	if err != nil {
		return err
	}
	admin, err := p.pool.Admin()
	if err != nil {
		return err
	}
	addr := p.pool.Address()

	return utils.WriteJSON(w, &Summary{
		Address:         &addr,
		Admin:           &admin,
		TotalShares:     types.Amount(totalShares),
		TotalStaked:     types.Amount(totalStaked),
		CurrentApr:      types.Amount(apr),
		GenesisEpoch:    genesis,
		LastRewardEpoch: last,
		Params: &Params{
			StakeTarget:       types.Amount(values.StakeTarget),
			MinApr:            types.Amount(values.MinApr),
			MaxApr:            types.Amount(values.MaxApr),
			AprUpdateStep:     types.Amount(values.AprUpdateStep),
			UnstakeWaitPeriod: values.UnstakeWaitPeriod,
		},
	})
}

func (p *Pool) handleGetTotals(w http.ResponseWriter, req *http.Request) error {
	version, err := utils.Uint64Query(req, "version", math.MaxUint64)
	if err != nil {
		return err
	}
	totalShares, err := p.pool.TotalSupplyAt(version)
	if err != nil {
		return err
	}
	totalStaked, err := p.pool.TotalStakeAt(version)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Totals{
		Version:          version,
		TotalShares:      types.Amount(totalShares),
		TotalStaked:      types.Amount(totalStaked),
		TotalVotingPower: types.Amount(totalShares),
	})
}

func (p *Pool) handleGetReward(w http.ResponseWriter, req *http.Request) error {
	epoch, err := strconv.ParseUint(mux.Vars(req)["epoch"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "epoch"))
	}
	reward, err := p.pool.EpochReward(epoch)
	if err != nil {
		return utils.FromRevert(err)
	}
	return utils.WriteJSON(w, &Reward{
		Epoch:   epoch,
		Amount:  types.Amount(reward.Amount.ToBig()),
		AtBlock: reward.AtBlock,
		Apr:     types.Amount(reward.Apr.ToBig()),
	})
}

// handlePayReward lets anyone trigger the reward of the current epoch.
func (p *Pool) handlePayReward(w http.ResponseWriter, _ *http.Request) error {
	if err := p.pool.PayReward(); err != nil {
		return utils.FromRevert(err)
	}
	last, err := p.pool.EpochIndexOfLastReward()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &PaidReward{LastRewardEpoch: last})
}

func (p *Pool) handlePayOutClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Manager == nil || body.Recipient == nil || body.Amount == nil {
		return utils.BadRequest(errors.New("body: manager, recipient and amount are required"))
	}
	if err := p.pool.PayOutClaim(*body.Manager, *body.Recipient, (*big.Int)(body.Amount)); err != nil {
		return utils.FromRevert(err)
	}
	totalShares, totalStaked, err := p.pool.Totals()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Totals{
		TotalShares:      types.Amount(totalShares),
		TotalStaked:      types.Amount(totalStaked),
		TotalVotingPower: types.Amount(totalShares),
	})
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/totals").
		Methods(http.MethodGet).
		Name("GET /pool/totals").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetTotals))
	sub.Path("/rewards/{epoch}").
		Methods(http.MethodGet).
		Name("GET /pool/rewards/{epoch}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetReward))
	sub.Path("/rewards").
		Methods(http.MethodPost).
		Name("POST /pool/rewards").
		HandlerFunc(utils.WrapHandlerFunc(p.handlePayReward))

	if p.enableWrites {
		sub.Path("/claims").
			Methods(http.MethodPost).
			Name("POST /pool/claims").
			HandlerFunc(utils.WrapHandlerFunc(p.handlePayOutClaim))
	}
}
