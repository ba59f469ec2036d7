// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"strings"

	"github.com/vechain/stakepool/metrics"
)

var (
	metricInsertedEvents       = metrics.LazyLoadCounterVec("eventdb_inserted_count", []string{"kind"})
	metricEventQueryParameters = metrics.LazyLoadCounterVec("eventdb_query_parameters", []string{"parameters"})
	metricLimitBucket          = metrics.LazyLoadHistogramVec("eventdb_query_limit_bucket", []string{"order"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func metricsHandleFilter(filter *Filter) {
	paramsUsed := make([]string, 0, 3)
	if filter.Range != nil {
		paramsUsed = append(paramsUsed, "range")
	}
	if filter.Address != nil {
		paramsUsed = append(paramsUsed, "address")
	}
	if len(filter.Kinds) > 0 {
		paramsUsed = append(paramsUsed, "kinds")
	}
	metricEventQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})

	if filter.Options != nil {
		limit := filter.Options.Limit
		if limit > 1000 {
			limit = 1001
		}
		order := string(filter.Order)
		if order == "" {
			order = string(ASC)
		}
		metricLimitBucket().ObserveWithLabels(int64(limit), map[string]string{"order": order})
	}
}
