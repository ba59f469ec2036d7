// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb journals committed pool events in sqlite.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

var logger = log.WithContext("pkg", "eventdb")

const insertEventQuery = `INSERT INTO event(blockNumber, blockTime, kind, user, counterparty, amount, shares, total, epoch, scheduledFor, name, value)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type EventDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open the event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// every connection of an in-memory db is a distinct database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("opened event db", "path", path, "sqlite", driverVer)
	return &EventDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

func (db *EventDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// Insert appends events in one sqlite transaction.
func (db *EventDB) Insert(ctx context.Context, events ...*staker.Event) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := db.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return err
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	txStmt := tx.StmtContext(ctx, stmt)
	for _, ev := range events {
		if _, err := txStmt.ExecContext(ctx,
			ev.Block,
			ev.Time,
			string(ev.Kind),
			addressValue(ev.User),
			addressValue(ev.Counterparty),
			amountValue(ev.Amount),
			amountValue(ev.Shares),
			amountValue(ev.Total),
			ev.Epoch,
			ev.ScheduledFor,
			ev.Name,
			ev.Value,
		); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "insert %v event", ev.Kind)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for _, ev := range events {
		metricInsertedEvents().AddWithLabel(1, map[string]string{"kind": string(ev.Kind)})
	}
	return nil
}

// Filter returns the journaled events matching filter, in insertion order unless DESC is asked.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Entry, error) {
	if filter == nil {
		return db.query(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		condition := "blockNumber"
		if filter.Range.Unit == Time {
			condition = "blockTime"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ?"
		}
	}
	if filter.Address != nil {
		args = append(args, filter.Address.Bytes(), filter.Address.Bytes())
		stmt += " AND (user = ? OR counterparty = ?)"
	}
	if len(filter.Kinds) > 0 {
		marks := make([]string, 0, len(filter.Kinds))
		for _, kind := range filter.Kinds {
			args = append(args, string(kind))
			marks = append(marks, "?")
		}
		stmt += " AND kind IN (" + strings.Join(marks, ",") + ")"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

// Last returns the most recently inserted event, nil when the db is empty.
func (db *EventDB) Last(ctx context.Context) (*Entry, error) {
	entries, err := db.query(ctx, "SELECT * FROM event ORDER BY seq DESC LIMIT 1")
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return entries[0], nil
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...any) ([]*Entry, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			entry                 Entry
			kind                  string
			user, counterparty    []byte
			amount, shares, total sql.NullString
		)
		if err := rows.Scan(
			&entry.Seq,
			&entry.Block,
			&entry.Time,
			&kind,
			&user,
			&counterparty,
			&amount,
			&shares,
			&total,
			&entry.Epoch,
			&entry.ScheduledFor,
			&entry.Name,
			&entry.Value,
		); err != nil {
			return nil, err
		}
		entry.Kind = staker.EventKind(kind)
		entry.User = thor.BytesToAddress(user)
		entry.Counterparty = thor.BytesToAddress(counterparty)
		if entry.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if entry.Shares, err = parseAmount(shares); err != nil {
			return nil, err
		}
		if entry.Total, err = parseAmount(total); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func addressValue(addr thor.Address) []byte {
	if addr.IsZero() {
		return nil
	}
	return addr.Bytes()
}

func amountValue(amount *big.Int) any {
	if amount == nil {
		return nil
	}
	return amount.String()
}

func parseAmount(s sql.NullString) (*big.Int, error) {
	if !s.Valid {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s.String, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s.String)
	}
	return v, nil
}
