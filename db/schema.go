// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	imported_from TEXT NOT NULL DEFAULT '',
	contact_source TEXT NOT NULL DEFAULT '',
	assigned_broker TEXT NOT NULL DEFAULT '',
	manual_brokers TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS appointments (
	id TEXT PRIMARY KEY,
	broker TEXT NOT NULL,
	date TEXT NOT NULL,
	start_hour REAL NOT NULL,
	duration REAL NOT NULL,
	client_name TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	from_pipedrive INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_appointments_broker_date ON appointments(broker, date);
CREATE INDEX IF NOT EXISTS idx_appointments_client_name ON appointments(client_name);
CREATE INDEX IF NOT EXISTS idx_appointments_from_pipedrive ON appointments(from_pipedrive);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	client_name TEXT NOT NULL,
	datetime TEXT NOT NULL DEFAULT '',
	broker TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL,
	follow_up TEXT NOT NULL DEFAULT '',
	next_steps TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notes_client_name ON notes(client_name);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	status TEXT CHECK(status IN ('idle', 'syncing', 'ok', 'error')),
	message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
