// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/health"
)

func TestHealth(t *testing.T) {
	h := health.New()
	router := mux.NewRouter()
	New(h).Mount(router, "/health")
	ts := httptest.NewServer(router)
	defer ts.Close()

	var status health.Status
	body, code := httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)

	h.Journaled(errors.New("database is locked"))
	body, code = httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.Healthy)
	assert.Equal(t, "database is locked", status.Journal.LastError)

	h.Journaled(nil)
	h.RewardChecked(10, 10)
	_, code = httpGet(t, ts.URL+"/health?maxRewardDelay=1h")
	assert.Equal(t, http.StatusOK, code)

	_, code = httpGet(t, ts.URL+"/health?maxRewardDelay=soon")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpGet(t, ts.URL+"/health?maxRewardDelay=-1s")
	assert.Equal(t, http.StatusBadRequest, code)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()

	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}
