// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package apilogs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPILogsHandler(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		start    bool
		body     *LogStatus
		status   int
		expected bool
	}{
		{"enable", http.MethodPost, false, &LogStatus{Enabled: true}, http.StatusOK, true},
		{"disable", http.MethodPost, true, &LogStatus{Enabled: false}, http.StatusOK, false},
		{"unchanged", http.MethodPost, true, &LogStatus{Enabled: true}, http.StatusOK, true},
		{"get", http.MethodGet, true, nil, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var enabled atomic.Bool
			enabled.Store(tt.start)

			var body []byte
			if tt.body != nil {
				var err error
				body, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}
			req := httptest.NewRequest(tt.method, "/admin/apilogs", bytes.NewReader(body))
			rr := httptest.NewRecorder()

			router := mux.NewRouter()
			New(&enabled).Mount(router, "/admin/apilogs")
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			var resp LogStatus
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.expected, resp.Enabled)
			assert.Equal(t, tt.expected, enabled.Load())
		})
	}
}

func TestAPILogsBadBody(t *testing.T) {
	var enabled atomic.Bool
	router := mux.NewRouter()
	New(&enabled).Mount(router, "/admin/apilogs")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/apilogs", bytes.NewReader([]byte(`{"on":true}`))))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, enabled.Load())
}
