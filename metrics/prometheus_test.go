// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	families, err := reg.Gather()
	require.NoError(t, err)
	m := make(map[string]*dto.MetricFamily)
	for _, f := range families {
		m[f.GetName()] = f
	}
	return m
}

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := newPrometheusMetrics(reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	count := o.GetOrCreateCountMeter("count1")
	assert.Same(t, count, o.GetOrCreateCountMeter("count1"))
	count.Add(2)
	o.GetOrCreateCountMeter("count1").Add(3)

	countVec := o.GetOrCreateCountVecMeter("countVec1", []string{"zeroOrOne"})
	countVec.AddWithLabel(1, map[string]string{"zeroOrOne": "0"})
	countVec.AddWithLabel(4, map[string]string{"zeroOrOne": "1"})

	gauge := o.GetOrCreateGaugeMeter("gauge1")
	gauge.Set(10)
	gauge.Add(-3)

	gaugeVec := o.GetOrCreateGaugeVecMeter("gaugeVec1", []string{"kind"})
	gaugeVec.SetWithLabel(5, map[string]string{"kind": "a"})
	gaugeVec.AddWithLabel(2, map[string]string{"kind": "a"})

	hist := o.GetOrCreateHistogramVecMeter("hist1", []string{"code"}, BucketHTTPReqs)
	hist.ObserveWithLabels(3, map[string]string{"code": "200"})
	hist.ObserveWithLabels(7, map[string]string{"code": "200"})

	families := gather(t, reg)

	assert.Equal(t, float64(5), families["stakepool_count1"].GetMetric()[0].GetCounter().GetValue())

	var vecTotal float64
	for _, m := range families["stakepool_countVec1"].GetMetric() {
		vecTotal += m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(5), vecTotal)

	assert.Equal(t, float64(7), families["stakepool_gauge1"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, float64(7), families["stakepool_gaugeVec1"].GetMetric()[0].GetGauge().GetValue())

	h := families["stakepool_hist1"].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.Equal(t, float64(10), h.GetSampleSum())

	rec := httptest.NewRecorder()
	o.GetOrCreateHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "stakepool_count1 5")
}

func TestNoopMetrics(t *testing.T) {
	n := defaultNoopMetrics()
	n.GetOrCreateCountMeter("c").Add(1)
	n.GetOrCreateCountVecMeter("cv", nil).AddWithLabel(1, nil)
	n.GetOrCreateGaugeMeter("g").Set(1)
	n.GetOrCreateGaugeVecMeter("gv", nil).SetWithLabel(1, nil)
	n.GetOrCreateHistogramVecMeter("h", nil, nil).ObserveWithLabels(1, nil)

	rec := httptest.NewRecorder()
	n.GetOrCreateHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)

	lazy := LazyLoadCounter("lazy")
	assert.Equal(t, lazy(), lazy())
}
