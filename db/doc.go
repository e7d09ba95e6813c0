// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the database schema for Narrowly.

Four tables: list and item hold the candidate sets, invitee holds the ordered
participant roster with invite tokens, and narrowing_session holds one
serialized session state per list with a revision counter for optimistic
concurrency.

The schema runs unchanged on postgres (lib/pq) and sqlite (modernc.org/sqlite);
the DATABASE_TYPE setting picks the driver.
*/
package db
