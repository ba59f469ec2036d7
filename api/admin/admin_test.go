// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/admin/loglevel"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/log"
)

func TestStartServer(t *testing.T) {
	var (
		lvl     slog.LevelVar
		apiLogs atomic.Bool
	)
	lvl.Set(log.LevelInfo)

	url, closeFunc, err := StartServer("127.0.0.1:0", &lvl, &apiLogs, health.New())
	require.NoError(t, err)
	defer closeFunc()
	require.True(t, strings.HasSuffix(url, "/admin"))

	res, err := http.Get(url + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Post(url+"/loglevel", "application/json", strings.NewReader(`{"level":"debug"}`))
	require.NoError(t, err)
	var resp loglevel.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	res.Body.Close()
	assert.Equal(t, "DEBUG", resp.CurrentLevel)
	assert.Equal(t, log.LevelDebug, lvl.Level())
}

func TestWithoutHealth(t *testing.T) {
	var (
		lvl     slog.LevelVar
		apiLogs atomic.Bool
	)
	url, closeFunc, err := StartServer("127.0.0.1:0", &lvl, &apiLogs, nil)
	require.NoError(t, err)
	defer closeFunc()

	res, err := http.Get(url + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
