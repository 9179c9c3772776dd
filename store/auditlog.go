/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// AuditLog persists session lifecycle events to SQLite for post-mortem
// query, independent of the message-bytes resend path. It is the
// direct generalization of prime-fix-md-go/database/marketdata.go's
// prepared-statement, WAL-mode SQLite pattern from market data rows to
// session events.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS session_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at TEXT NOT NULL,
	event_type TEXT NOT NULL,
	from_state TEXT,
	to_state TEXT,
	detail TEXT
)`

const insertEventQuery = `
INSERT INTO session_events (occurred_at, event_type, from_state, to_state, detail)
VALUES (?, ?, ?, ?, ?)`

// AuditLog wraps a SQLite database with a single prepared statement for
// event inserts, initialized once and reused - the same lazy
// prepared-statement discipline marketdata.go uses to avoid SQL parsing
// overhead on every insert.
type AuditLog struct {
	db         *sql.DB
	stmtInsert *sql.Stmt
}

// OpenAuditLog opens (or creates) a SQLite database at path and ensures
// the session_events table exists.
func OpenAuditLog(path string) (*AuditLog, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("auditlog: open: %w", err)
	}

	if _, err := db.Exec(createEventsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("auditlog: create schema: %w", err)
	}

	stmt, err := db.Prepare(insertEventQuery)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("auditlog: prepare insert: %w", err)
	}

	return &AuditLog{db: db, stmtInsert: stmt}, nil
}

// RecordEvent inserts one session lifecycle event row.
func (a *AuditLog) RecordEvent(occurredAt, eventType, fromState, toState, detail string) error {
	_, err := a.stmtInsert.Exec(occurredAt, eventType, fromState, toState, detail)
	return err
}

// Close releases the prepared statement and the underlying connection.
func (a *AuditLog) Close() error {
	if a.stmtInsert != nil {
		_ = a.stmtInsert.Close()
	}
	return a.db.Close()
}
