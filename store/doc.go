// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store implements the engine's durable collaborator contracts on
database/sql.

The session row is the serialization point for a session: Save performs a
single atomic write guarded by a revision counter, and a losing concurrent
writer gets session.ErrRevisionConflict so the engine can replay its
read-modify-write on fresh state.

The list side (items, invitees, token lookup) is read-only here; list
management itself belongs to the surrounding system.
*/
package store
