// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Narrowly API server.

Narrowly takes a group from a shared candidate list (movies, books, dishes)
to one winner through successive elimination rounds. Turn control rotates
across invited participants on a precomputed plan; the organizer owns the
session but never takes a narrowing turn.

# Starting the Server

	DATABASE_URL=narrowly.db ORGANIZER_KEY_SALT=... go run main.go

Or with flags:

	go run main.go -p 3319 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or postgres connection string
  - ORGANIZER_KEY_SALT (--organizer-salt): secret for organizer key HMAC

Optional settings:

  - PORT (-p): server port (default: 3319)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - RESET_ORGANIZER_ONLY (--reset-organizer-only): restrict session reset to
    the organizer key

# Architecture

The server uses a handler-based architecture with dependency injection:

  - plan: pure round-target computation
  - session: session state, turn authority, and the transition engine
  - pubsub: in-process fan-out of committed state to live viewers
  - store: durable session and list storage on database/sql
  - handlers: HTTP request handlers (actions, live feed)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: request/response types
  - auth: organizer keys and invite tokens
  - db: schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
