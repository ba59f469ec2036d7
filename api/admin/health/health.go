// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/health"
)

const defaultMaxRewardDelay = time.Hour

type Health struct {
	health *health.Health
}

func New(h *health.Health) *Health {
	return &Health{health: h}
}

func (h *Health) handleGetHealth(w http.ResponseWriter, req *http.Request) error {
	maxRewardDelay := defaultMaxRewardDelay
	if s := req.URL.Query().Get("maxRewardDelay"); s != "" {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "maxRewardDelay"))
		}
		if parsed <= 0 {
			return utils.BadRequest(errors.New("maxRewardDelay: must be positive"))
		}
		maxRewardDelay = parsed
	}

	status := h.health.Status(maxRewardDelay)
	w.Header().Set("Content-Type", utils.JSONContentType)
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	return utils.WriteJSON(w, status)
}

func (h *Health) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
