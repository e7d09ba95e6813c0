// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"reflect"
	"testing"

	"github.com/danielhkuo/narrowly/plan"
)

func repairDefaults(s *State, itemIDs []string, inviteeCount int) bool {
	return Repair(s, itemIDs, inviteeCount, plan.DefaultTail, plan.DefaultMinReduction)
}

func TestRepairCleanStateUntouched(t *testing.T) {
	s := newTestState(20, 4)
	mustConfirmRound(t, s)
	before := *s
	beforeRemaining := append([]string(nil), s.Remaining...)

	if repairDefaults(s, testItems(20), 3) {
		t.Error("Repair reported changes on a healthy state")
	}
	if s.RoundIndex != before.RoundIndex || !reflect.DeepEqual(s.Remaining, beforeRemaining) {
		t.Error("Repair mutated a healthy state")
	}
}

func TestRepairVersionBump(t *testing.T) {
	s := newTestState(10, 3)
	s.Version = 0

	if !repairDefaults(s, testItems(10), 2) {
		t.Error("Version migration should be reported as a change")
	}
	if s.Version != SchemaVersion {
		t.Errorf("Expected version %d, got %d", SchemaVersion, s.Version)
	}
}

func TestRepairParticipantCountFromRoster(t *testing.T) {
	s := newTestState(10, 3)
	s.ParticipantCount = 0

	repairDefaults(s, testItems(10), 4)
	if s.ParticipantCount != 5 {
		t.Errorf("Expected roster-derived participant count 5, got %d", s.ParticipantCount)
	}

	// No invitees at all still yields a workable session.
	s.ParticipantCount = 0
	repairDefaults(s, testItems(10), 0)
	if s.ParticipantCount != 2 {
		t.Errorf("Expected floor participant count 2, got %d", s.ParticipantCount)
	}
}

func TestRepairRecomputesMissingPlan(t *testing.T) {
	s := newTestState(50, 4)
	s.Plan = nil

	repairDefaults(s, testItems(50), 3)
	if !reflect.DeepEqual(s.Plan, []int{5, 3, 1}) {
		t.Errorf("Expected recomputed plan [5 3 1], got %v", s.Plan)
	}
}

func TestRepairReseedsEmptyRemaining(t *testing.T) {
	s := newTestState(10, 3)
	s.Remaining = nil

	repairDefaults(s, testItems(10), 2)
	if len(s.Remaining) != 10 {
		t.Errorf("Expected remaining reseeded from the list, got %d", len(s.Remaining))
	}
}

func TestRepairDedupesRemaining(t *testing.T) {
	s := newTestState(5, 3)
	s.Remaining = []string{"item-01", "item-02", "item-01", "item-03", "item-02"}

	repairDefaults(s, testItems(5), 2)
	if !reflect.DeepEqual(s.Remaining, []string{"item-01", "item-02", "item-03"}) {
		t.Errorf("Expected first occurrences kept in order, got %v", s.Remaining)
	}
}

func TestRepairClampsRoundIndex(t *testing.T) {
	s := newTestState(20, 4) // plan [5 3 1]

	s.RoundIndex = -2
	repairDefaults(s, testItems(20), 3)
	if s.RoundIndex != 0 {
		t.Errorf("Negative round index should clamp to 0, got %d", s.RoundIndex)
	}

	s = newTestState(20, 4)
	s.RoundIndex = 99
	s.Rounds = make([]RoundRecord, 3)
	repairDefaults(s, testItems(20), 3)
	if s.RoundIndex != 3 {
		t.Errorf("Round index should clamp to plan length, got %d", s.RoundIndex)
	}
}

func TestRepairReconcilesHistoryLength(t *testing.T) {
	s := newTestState(20, 4)
	mustConfirmRound(t, s)

	// Extra history entries beyond the round index are dropped.
	s.Rounds = append(s.Rounds, RoundRecord{Round: 9})
	repairDefaults(s, testItems(20), 3)
	if len(s.Rounds) != s.RoundIndex {
		t.Errorf("History length %d should match round index %d", len(s.Rounds), s.RoundIndex)
	}

	// A round index ahead of the history rolls back to what was recorded.
	s.RoundIndex = 3
	repairDefaults(s, testItems(20), 3)
	if s.RoundIndex != len(s.Rounds) {
		t.Errorf("Round index %d should roll back to history length %d", s.RoundIndex, len(s.Rounds))
	}
}

func TestRepairFiltersSelection(t *testing.T) {
	s := newTestState(10, 4) // plan [5 3 1], target 5
	s.Selected = []string{"item-01", "not-in-list", "item-03", "item-04", "item-05", "item-06", "item-07"}

	repairDefaults(s, testItems(10), 3)
	for _, id := range s.Selected {
		if !contains(s.Remaining, id) {
			t.Errorf("Selection kept an item outside remaining: %s", id)
		}
	}
	if len(s.Selected) > s.Target() {
		t.Errorf("Selection %d exceeds round target %d", len(s.Selected), s.Target())
	}
}

func TestRepairWinnerInvariant(t *testing.T) {
	// Plan exhausted but winner missing.
	s := newTestState(20, 4)
	mustConfirmRound(t, s)
	mustConfirmRound(t, s)
	mustConfirmRound(t, s)
	s.Winner = ""
	repairDefaults(s, testItems(20), 3)
	if s.Winner != s.Remaining[0] {
		t.Errorf("Exhausted plan should restore winner %q, got %q", s.Remaining[0], s.Winner)
	}

	// Winner set mid-game with plenty remaining.
	s = newTestState(20, 4)
	s.Winner = "item-07"
	repairDefaults(s, testItems(20), 3)
	if s.Winner != "" {
		t.Errorf("Premature winner should be cleared, got %q", s.Winner)
	}
}
