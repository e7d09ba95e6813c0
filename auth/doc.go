// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key and token utilities for the Narrowly API.

# Organizer Keys

Organizer keys use HMAC-SHA256 to create deterministic, verifiable keys:

	key := auth.GenerateOrganizerKey(listID, salt)
	err := auth.ValidateOrganizerKey(listID, key, salt)

The key is URL-safe base64 encoded without padding. Since it is deterministic,
the same list ID and salt always produce the same key, so validation needs no
database lookup.

# Invite Tokens

An invite token is a record of {randomId, issuedAt}. The string handed to a
participant is only the random half:

	token := auth.GenerateInviteToken()

The issue timestamp lives next to the token in the invitee roster, and expiry
is a pure function of it:

	auth.Expired(issuedAt, time.Now()) // true after 7 days

Tokens with no recorded issue timestamp (rows predating expiry tracking) are
the explicit legacy variant: auth.IsLegacy reports them and Expired never
fires for them.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
