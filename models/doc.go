// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models contains request, response, and domain types for the
Narrowly API.

# Session Views

Every boundary action returns a SessionView:

	{
	  "list_id": "...",
	  "plan": [5, 3, 1],
	  "round_index": 1,
	  "target": 3,
	  "remaining": [{"id": "...", "title": "..."}],
	  "selected": ["..."],
	  "active_index": 1,
	  "active_role": "picker-2",
	  "terminal": false
	}

The same payload is fanned out to live websocket subscribers, so a client
that polls and a client that streams see identical state.

# Errors

Rejected actions return an ErrorResponse whose Code field is a stable
machine-readable kind ("out_of_turn", "token_expired", ...) so clients can
distinguish "wait your turn" from "re-issue the invite" from "refetch state".
*/
package models
