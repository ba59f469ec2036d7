// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

// amounts are kept as decimal text, they may exceed 64 bits.
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	blockNumber INTEGER NOT NULL,
	blockTime INTEGER NOT NULL,
	kind TEXT NOT NULL,
	user BLOB(20),
	counterparty BLOB(20),
	amount TEXT,
	shares TEXT,
	total TEXT,
	epoch INTEGER,
	scheduledFor INTEGER,
	name TEXT,
	value TEXT
);

CREATE INDEX IF NOT EXISTS blockNumberIndex ON event(blockNumber);
CREATE INDEX IF NOT EXISTS kindIndex ON event(kind);
CREATE INDEX IF NOT EXISTS userIndex ON event(user);
CREATE INDEX IF NOT EXISTS counterpartyIndex ON event(counterparty);
`
