// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides package scoped loggers on top of the go-ethereum structured logger.
package log

import (
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Log levels, in addition to the slog ones.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Handlers and helpers re-exported for the command line.
var (
	NewLogger                   = ethlog.NewLogger
	NewTerminalHandlerWithLevel = ethlog.NewTerminalHandlerWithLevel
	JSONHandlerWithLevel        = ethlog.JSONHandlerWithLevel
	FromLegacyLevel             = ethlog.FromLegacyLevel
	DiscardHandler              = ethlog.DiscardHandler
	SetDefault                  = ethlog.SetDefault
	Root                        = ethlog.Root
)

// Logger writes key/value pairs on top of a fixed context.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
}

// WithContext returns a logger carrying ctx. Records are written to the root
// logger resolved at call time, so package level loggers follow SetDefault.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

// Trace logs at trace level via the root logger.
func Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, ctx...) }

// Debug logs at debug level via the root logger.
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }

// Info logs at info level via the root logger.
func Info(msg string, ctx ...any) { ethlog.Root().Info(msg, ctx...) }

// Warn logs at warn level via the root logger.
func Warn(msg string, ctx ...any) { ethlog.Root().Warn(msg, ctx...) }

// Error logs at error level via the root logger.
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }

type contextLogger struct {
	ctx []any
}

func (l *contextLogger) merge(ctx []any) []any {
	if len(ctx) == 0 {
		return l.ctx
	}
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	return append(append(merged, l.ctx...), ctx...)
}

func (l *contextLogger) write(level slog.Level, msg string, ctx []any) {
	ethlog.Root().Log(level, msg, l.merge(ctx)...)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *contextLogger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *contextLogger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *contextLogger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }

func (l *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{ctx: l.merge(ctx)}
}
