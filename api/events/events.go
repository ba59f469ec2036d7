// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/api/utils/types"
	"github.com/vechain/stakepool/eventdb"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{
		db,
		limit,
	}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var ef EventFilter
	if err := utils.ParseJSON(req.Body, &ef); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if ef.Options != nil && ef.Options.Limit > e.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if ef.Options != nil && ef.Options.Offset > math.MaxInt64 {
		return utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if ef.Range != nil && ef.Range.From != nil && ef.Range.To != nil && *ef.Range.From > *ef.Range.To {
		return utils.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
	}
	if ef.Options == nil {
		// one more than the limit tells whether the result was cut
		ef.Options = &Options{Limit: e.limit + 1}
	}

	filter, err := convertFilter(&ef)
	if err != nil {
		return utils.BadRequest(err)
	}
	entries, err := e.db.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	if len(entries) > int(e.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}

	out := make([]*types.Event, len(entries))
	for i, entry := range entries {
		out[i] = types.ConvertEvent(entry.Seq, &entry.Event)
	}
	return utils.WriteJSON(w, out)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
