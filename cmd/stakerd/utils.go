// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/co"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/metrics"
)

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	verbosity := ctx.Uint64(verbosityFlag.Name)
	if verbosity > 5 {
		return nil, errors.Errorf("invalid verbosity %d, expected 0-5", verbosity)
	}
	lvl := &slog.LevelVar{}
	lvl.Set(log.FromLegacyLevel(int(verbosity)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, lvl)
	} else {
		useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return lvl, nil
}

func defaultDataDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		if usr, err := user.Current(); err == nil {
			home = usr.HomeDir
		}
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".org.vechain.stakepool")
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openLedgerDB(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, error) {
	cacheMB := ctx.Int(cacheFlag.Name)
	if cacheMB < 16 {
		cacheMB = 16
	}
	path := filepath.Join(dataDir, "ledger.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger database [%v]", path)
	}
	return db, nil
}

func openEventDB(ctx *cli.Context, dataDir string) (*eventdb.EventDB, error) {
	if ctx.Bool(skipEventsFlag.Name) {
		return nil, nil
	}
	path := filepath.Join(dataDir, "events.db")
	db, err := eventdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", path)
	}
	return db, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestBodyLimit caps request bodies at 200 KB.
func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 200*1024)
		h.ServeHTTP(w, r)
	})
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func(), error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	if timeout := ctx.Uint64(apiTimeoutFlag.Name); timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = requestBodyLimit(handler)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
