// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/api/admin"
	"github.com/vechain/stakepool/cmd/stakerd/node"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/token"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string

	flags = []cli.Flag{
		configFlag,
		dataDirFlag,
		cacheFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiEventsLimitFlag,
		apiEnableWritesFlag,
		apiEnablePprofFlag,
		enableAPILogsFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		verbosityFlag,
		jsonLogsFlag,
		rewardIntervalFlag,
		skipEventsFlag,
		ntpServerFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakerd",
		Usage:     "Staking pool daemon",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Flags:     flags,
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	configPath := ctx.String(configFlag.Name)
	if configPath == "" {
		return errors.Errorf("missing -%s", configFlag.Name)
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	gene, err := cfg.genesis()
	if err != nil {
		return errors.Wrap(err, "invalid config")
	}

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	ledgerDB, err := openLedgerDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing ledger database...")
		if err := ledgerDB.Close(); err != nil {
			log.Warn("failed to close ledger database", "err", err)
		}
	}()

	st, err := state.New(ledgerDB, ctx.Int(cacheFlag.Name)*1024)
	if err != nil {
		return err
	}
	tok := token.New(gene.token, st)
	if err := applyAllocations(st, tok, gene); err != nil {
		return errors.Wrap(err, "genesis allocations")
	}

	pool, err := staker.New(st, tok, staker.SystemClock{}, gene.options)
	if err != nil {
		return errors.Wrap(err, "open pool")
	}
	defer pool.Close()

	eventDB, err := openEventDB(ctx, dataDir)
	if err != nil {
		return err
	}
	if eventDB != nil {
		defer func() {
			log.Info("closing event database...")
			if err := eventDB.Close(); err != nil {
				log.Warn("failed to close event database", "err", err)
			}
		}()
	}

	healthStatus := health.New()
	n := node.New(pool, eventDB, node.Options{
		RewardInterval: ctx.Duration(rewardIntervalFlag.Name),
		NTPServer:      ctx.String(ntpServerFlag.Name),
		Health:         healthStatus,
	})

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	apiHandler, apiCloser := api.New(pool, eventDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableWrites:         ctx.Bool(apiEnableWritesFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		PprofOn:              ctx.Bool(apiEnablePprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser, err := startAPIServer(ctx, apiHandler)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
	}

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, healthStatus)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		adminURL = url
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
	}

	printStartupMessage(pool, dataDir, apiURL, metricsURL, adminURL)

	return n.Run(exitSignal)
}

// applyAllocations credits the configured balances on a ledger without any token
// and grants the pool the right to mint rewards.
func applyAllocations(st *state.State, tok *token.Token, gene *genesis) error {
	supply, err := tok.TotalSupply()
	if err != nil {
		return err
	}
	if supply.Sign() > 0 {
		return nil
	}

	for _, a := range gene.allocations {
		if err := tok.Allocate(a.addr, a.amount); err != nil {
			return err
		}
		if a.approvePool {
			if err := tok.Approve(a.addr, gene.options.Address, a.amount); err != nil {
				return err
			}
		}
	}
	if err := tok.SetMinter(gene.options.Address, true); err != nil {
		return err
	}
	if err := st.Commit(); err != nil {
		return err
	}
	log.Info("applied genesis allocations", "count", len(gene.allocations), "minter", gene.options.Address)
	return nil
}

func printStartupMessage(pool *staker.Pool, dataDir, apiURL, metricsURL, adminURL string) {
	totalShares, totalStaked, _ := pool.Totals()
	apr, _ := pool.CurrentApr()
	epoch, _ := pool.EpochIndexOfLastReward()

	optional := func(url string) string {
		if url == "" {
			return "Disabled"
		}
		return url
	}

	fmt.Printf(`Starting %v
    Pool         [ %v ]
    Totals       [ shares %v, staked %v ]
    Reward       [ epoch %v, apr %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		"stakerd "+fullVersion(),
		pool.Address(),
		totalShares, totalStaked,
		epoch, apr,
		filepath.Clean(dataDir),
		apiURL,
		optional(metricsURL),
		optional(adminURL),
	)
}
