// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/middleware"
	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/api/subscriptions"
	"github.com/vechain/stakepool/api/users"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/staker"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	// EnableWrites mounts the endpoints acting on behalf of the address in the request.
	// Only for trusted operators, nothing is signed.
	EnableWrites         bool
	EventsLimit          uint64
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
}

// New return api router
func New(p *staker.Pool, eventDB *eventdb.EventDB, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	pool.New(p, opts.EnableWrites).
		Mount(router, "/pool")
	users.New(p, opts.EnableWrites).
		Mount(router, "/users")
	if eventDB != nil {
		events.New(eventDB, opts.EventsLimit).
			Mount(router, "/events")
	}
	subs := subscriptions.New(p, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	if opts.EnableReqLogger != nil {
		router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
