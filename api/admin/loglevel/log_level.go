// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/log"
)

type Request struct {
	Level string `json:"level"`
}

type Response struct {
	CurrentLevel string `json:"currentLevel"`
}

var levels = map[string]slog.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"crit":  log.LevelCrit,
}

// LogLevel reads and changes the verbosity of the running daemon.
type LogLevel struct {
	logLevel *slog.LevelVar
}

func New(logLevel *slog.LevelVar) *LogLevel {
	return &LogLevel{
		logLevel: logLevel,
	}
}

func (l *LogLevel) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("get-log-level").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGet))

	sub.Path("").
		Methods(http.MethodPost).
		Name("post-log-level").
		HandlerFunc(utils.WrapHandlerFunc(l.handlePost))
}

func (l *LogLevel) handleGet(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, Response{
		CurrentLevel: l.logLevel.Level().String(),
	})
}

func (l *LogLevel) handlePost(w http.ResponseWriter, r *http.Request) error {
	var req Request
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "Invalid request body"))
	}
	level, ok := levels[strings.ToLower(req.Level)]
	if !ok {
		return utils.BadRequest(errors.New("Invalid verbosity level"))
	}
	l.logLevel.Set(level)
	log.Info("log level updated", "pkg", "loglevel", "level", level)

	return utils.WriteJSON(w, Response{
		CurrentLevel: l.logLevel.Level().String(),
	})
}
