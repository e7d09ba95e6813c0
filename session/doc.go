// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session implements the narrowing engine: the durable session state,
the turn authority, and the transition engine that applies validated actions.

# State

A State records the round plan, the items still in play, the in-progress
selection, the committed round history, and the winner once one exists. The
invariants that hold after every transition:

  - the remaining set strictly shrinks across committed rounds
  - the selection is a subset of remaining and never exceeds the round target
  - a winner exists exactly when the plan is exhausted or one item remains
  - history length always equals the round index
  - the active participant is invitees[roundIndex mod (participants-1)]

Pure transitions (Select, Deselect, Confirm, Undo, Reset) live on State;
Repair migrates loaded payloads to the current schema in one tested place.

# Engine

Engine wires the transitions to the collaborators: it resolves invite tokens
(7-day expiry, explicit legacy variant), consults CanAct, and serializes all
mutations of one session through a read-modify-write loop guarded by the
store's revision counter. Successful mutations are persisted before they are
reported, then fanned out through the Publisher with the same payload the
caller receives.

Rejections are sentinel errors (ErrOutOfTurn, ErrSelectionSizeMismatch, ...)
that the HTTP boundary maps to status codes and stable error codes.
*/
package session
