// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the yaml pool configuration, required to create a new pool",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger and event databases",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 256,
		Usage: "megabytes of ram allocated to the ledger database",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8679",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:  "api-events-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events API",
	}
	apiEnableWritesFlag = cli.BoolFlag{
		Name:  "api-enable-writes",
		Usage: "enable the operator endpoints acting on behalf of any address (trusted networks only)",
	}
	apiEnablePprofFlag = cli.BoolFlag{
		Name:  "api-enable-pprof",
		Usage: "enable pprof endpoints under /debug/pprof",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with execution time(ms) above threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests answered with a server error",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	rewardIntervalFlag = cli.DurationFlag{
		Name:  "reward-interval",
		Value: 0,
		Usage: "trigger the epoch reward payout periodically (e.g. 10m), 0 disables it",
	}
	skipEventsFlag = cli.BoolFlag{
		Name:  "skip-events",
		Usage: "do not journal pool events (disables /events API)",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server used to check the local clock, empty disables the check",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
)
