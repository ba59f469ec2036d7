// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/admin/apilogs"
	healthAPI "github.com/vechain/stakepool/api/admin/health"
	"github.com/vechain/stakepool/api/admin/loglevel"
	"github.com/vechain/stakepool/co"
	"github.com/vechain/stakepool/health"
)

// New serves the log level and API logs toggles, plus the daemon health when h is not nil.
func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, h *health.Health) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	loglevel.New(logLevel).Mount(sub, "/loglevel")
	apilogs.New(apiLogs).Mount(sub, "/apilogs")
	if h != nil {
		healthAPI.New(h).Mount(sub, "/health")
	}

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}

// StartServer serves the admin api on addr until the returned func is called.
func StartServer(addr string, logLevel *slog.LevelVar, apiLogs *atomic.Bool, h *health.Health) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", addr)
	}

	srv := &http.Server{Handler: New(logLevel, apiLogs, h), ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/admin", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
