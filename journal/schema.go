package journal

// created_at columns hold UnixNano in UTC. date holds YYYY-MM-DD.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	starting_capital REAL NOT NULL DEFAULT 0,
	password_hash BLOB NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	gross_pl REAL NOT NULL DEFAULT 0,
	brokerage REAL NOT NULL DEFAULT 0,
	tax REAL NOT NULL DEFAULT 0,
	quantity INTEGER NOT NULL DEFAULT 1,
	rules_adhered INTEGER NOT NULL DEFAULT 0,
	kind TEXT NOT NULL DEFAULT 'TRADE',
	notes TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_user_created ON trades(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_trades_user_date ON trades(user_id, date);
`
