// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The statements stay portable across postgres and sqlite: $n placeholders in
// queries, timestamps written from Go rather than defaulted in SQL, and the
// session payload stored as TEXT.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Candidate lists (owned by the surrounding list-management system)
CREATE TABLE IF NOT EXISTS list (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Candidate items, immutable once a list is finalized for narrowing
CREATE TABLE IF NOT EXISTS item (
    id TEXT PRIMARY KEY,
    list_id TEXT NOT NULL REFERENCES list(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    note TEXT,
    image TEXT
);

CREATE INDEX IF NOT EXISTS idx_item_list_id ON item(list_id);

-- Ordered invitee roster; position drives turn rotation.
-- issued_at is NULL for legacy tokens that predate expiry tracking.
CREATE TABLE IF NOT EXISTS invitee (
    list_id TEXT NOT NULL REFERENCES list(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    token TEXT NOT NULL,
    issued_at TIMESTAMP,
    PRIMARY KEY (list_id, position),
    UNIQUE (list_id, token)
);

-- One narrowing session per list; revision is the optimistic write guard
CREATE TABLE IF NOT EXISTS narrowing_session (
    list_id TEXT PRIMARY KEY REFERENCES list(id) ON DELETE CASCADE,
    payload TEXT NOT NULL,
    revision INTEGER NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`
