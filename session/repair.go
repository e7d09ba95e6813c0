// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"github.com/danielhkuo/narrowly/plan"
)

// Repair normalizes a loaded state against the current item set and invitee
// roster, migrating older or partially written payloads to SchemaVersion.
// It is the single place defaults are applied; nothing else in the package
// tolerates a malformed state. Returns true when anything changed.
func Repair(s *State, itemIDs []string, inviteeCount int, tail []int, minReduction float64) bool {
	changed := false

	if s.Version != SchemaVersion {
		s.Version = SchemaVersion
		changed = true
	}

	if s.ParticipantCount < 2 {
		pc := inviteeCount + 1
		if pc < 2 {
			pc = 2
		}
		s.ParticipantCount = pc
		changed = true
	}

	if len(s.Plan) == 0 {
		s.Plan = plan.Compute(len(itemIDs), s.ParticipantCount, tail, minReduction)
		changed = true
	}

	if len(s.Remaining) == 0 {
		s.Remaining = append([]string(nil), itemIDs...)
		changed = true
	}
	if dropped := dedupe(&s.Remaining); dropped {
		changed = true
	}

	if s.RoundIndex < 0 {
		s.RoundIndex = 0
		changed = true
	}
	if s.RoundIndex > len(s.Plan) {
		s.RoundIndex = len(s.Plan)
		changed = true
	}

	// History and round index move together: one entry per committed round.
	if len(s.Rounds) > s.RoundIndex {
		s.Rounds = s.Rounds[:s.RoundIndex]
		changed = true
	} else if len(s.Rounds) < s.RoundIndex {
		s.RoundIndex = len(s.Rounds)
		changed = true
	}

	// Selected must be a subset of remaining and within the round target.
	kept := s.Selected[:0]
	for _, id := range s.Selected {
		if contains(s.Remaining, id) && len(kept) < s.Target() {
			kept = append(kept, id)
		}
	}
	if len(kept) != len(s.Selected) {
		s.Selected = kept
		changed = true
	}

	// Winner holds exactly when the plan is exhausted or one item remains.
	terminal := s.RoundIndex >= len(s.Plan) || len(s.Remaining) == 1
	switch {
	case terminal && s.Winner == "" && len(s.Remaining) > 0:
		s.Winner = s.Remaining[0]
		changed = true
	case !terminal && s.Winner != "":
		s.Winner = ""
		changed = true
	}

	return changed
}

func dedupe(ids *[]string) bool {
	seen := make(map[string]bool, len(*ids))
	out := (*ids)[:0]
	for _, id := range *ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == len(*ids) {
		return false
	}
	*ids = out
	return true
}
