// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Narrowly API.

# Handler Types

Each handler is a struct with its dependencies injected via constructor:

  - SessionHandler: the narrowing actions (get, select, deselect, confirm,
    undo, reset)
  - LiveHandler: the websocket feed of committed state changes

# Narrowing Flow

All actions are scoped to a list and return the full session view, so a
client that only polls stays correct without the live feed:

	GET  /sessions/{list}           → GetState (creates the session lazily)
	POST /sessions/{list}/select    → Select
	POST /sessions/{list}/deselect  → Deselect
	POST /sessions/{list}/confirm   → Confirm
	POST /sessions/{list}/undo      → Undo
	POST /sessions/{list}/reset     → Reset
	GET  /sessions/{list}/live      → Stream (snapshot, then every change)

Participant actions require the X-Invite-Token header. Reset also accepts
X-Organizer-Key, and can be restricted to it via RESET_ORGANIZER_ONLY.

# Error Mapping

Engine rejections carry a stable code in the JSON body: 401 for token
problems (re-issue the invite), 409 for turn/size/undo conflicts (wait or
refetch), 400 for requests that never made sense, 404 for unknown lists,
503 when storage is down.
*/
package handlers
