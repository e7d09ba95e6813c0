// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import "errors"

// Error kinds for rejected narrowing actions. Validation errors are terminal
// for the request: no retry, no partial mutation. ErrStoreUnavailable is the
// only kind a caller may reasonably retry.
var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrInvalidToken          = errors.New("invalid invite token")
	ErrTokenExpired          = errors.New("invite token expired")
	ErrOutOfTurn             = errors.New("out of turn")
	ErrNotYourUndoTurn       = errors.New("not your undo turn")
	ErrSelectionSizeMismatch = errors.New("selection size mismatch")
	ErrItemNotInRemaining    = errors.New("item not in remaining set")
	ErrNothingToUndo         = errors.New("nothing to undo")
	ErrStoreUnavailable      = errors.New("store unavailable")
)

// ErrRevisionConflict is returned by a session store when a concurrent writer
// committed first. The engine retries the whole read-modify-write on it.
var ErrRevisionConflict = errors.New("session revision conflict")
