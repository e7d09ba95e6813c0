// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

// CanAct reports whether the invitee at participantIndex holds the turn for
// the round in progress. Rotation wraps across the invitees and never lands
// on the organizer. Every operation goes through this one function; the
// arithmetic is not repeated elsewhere.
func CanAct(s *State, participantIndex int) bool {
	if participantIndex < 0 {
		return false
	}
	return participantIndex == s.RoundIndex%s.slots()
}
