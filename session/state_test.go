// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/danielhkuo/narrowly/plan"
)

func testItems(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("item-%02d", i+1)
	}
	return ids
}

// newTestState builds a session over n items with the given participant
// count (organizer included).
func newTestState(n, participantCount int) *State {
	return NewState("list-1", testItems(n), participantCount, plan.DefaultTail, plan.DefaultMinReduction)
}

func mustConfirmRound(t *testing.T, s *State) {
	t.Helper()
	target := s.Target()
	for _, id := range s.Remaining[:target] {
		if err := s.Select(id); err != nil {
			t.Fatalf("Select(%s) failed: %v", id, err)
		}
	}
	if err := s.Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
}

func TestNewStateSeedsFromPlan(t *testing.T) {
	s := newTestState(50, 4)

	if !reflect.DeepEqual(s.Plan, []int{5, 3, 1}) {
		t.Errorf("Expected plan [5 3 1], got %v", s.Plan)
	}
	if s.RoundIndex != 0 || len(s.Rounds) != 0 || s.Winner != "" {
		t.Error("Fresh state should be at round 0 with no history or winner")
	}
	if len(s.Remaining) != 50 {
		t.Errorf("Expected 50 remaining, got %d", len(s.Remaining))
	}
}

func TestNewStateSingleItemIsImmediatelyTerminal(t *testing.T) {
	s := newTestState(1, 3)
	if !s.Terminal() || s.Winner != "item-01" {
		t.Errorf("One-item session must start terminal with that item as winner, got %+v", s)
	}
}

func TestSelectRejectsUnknownItem(t *testing.T) {
	s := newTestState(10, 3)
	if err := s.Select("no-such-item"); !errors.Is(err, ErrItemNotInRemaining) {
		t.Errorf("Expected ErrItemNotInRemaining, got %v", err)
	}
}

func TestSelectIdempotent(t *testing.T) {
	s := newTestState(10, 3)

	if err := s.Select("item-03"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	snapshot := append([]string(nil), s.Selected...)

	if err := s.Select("item-03"); err != nil {
		t.Fatalf("Repeated select failed: %v", err)
	}
	if !reflect.DeepEqual(s.Selected, snapshot) {
		t.Errorf("Repeated select changed state: %v vs %v", s.Selected, snapshot)
	}
}

func TestSelectSilentlyCappedAtTarget(t *testing.T) {
	s := newTestState(10, 4) // plan [5 3 1]

	for i := 0; i < 5; i++ {
		if err := s.Select(s.Remaining[i]); err != nil {
			t.Fatalf("Select failed: %v", err)
		}
	}
	// Target reached: a sixth select must neither error nor grow the set.
	if err := s.Select(s.Remaining[5]); err != nil {
		t.Errorf("Select past target should be a no-op, got %v", err)
	}
	if len(s.Selected) != 5 {
		t.Errorf("Selection exceeded target: %d", len(s.Selected))
	}
}

func TestDeselect(t *testing.T) {
	s := newTestState(10, 3)

	s.Select("item-01")
	s.Select("item-02")
	if err := s.Deselect("item-01"); err != nil {
		t.Fatalf("Deselect failed: %v", err)
	}
	if !reflect.DeepEqual(s.Selected, []string{"item-02"}) {
		t.Errorf("Expected [item-02], got %v", s.Selected)
	}

	// Absent item is a no-op, not an error.
	if err := s.Deselect("item-09"); err != nil {
		t.Errorf("Deselect of unselected item should be a no-op, got %v", err)
	}
}

func TestConfirmSizeMismatch(t *testing.T) {
	s := newTestState(10, 4) // plan [5 3 1]

	// Empty selection.
	if err := s.Confirm(); !errors.Is(err, ErrSelectionSizeMismatch) {
		t.Errorf("Expected ErrSelectionSizeMismatch, got %v", err)
	}

	// Partial selection, every round including the last.
	for round := 0; round < len(s.Plan); round++ {
		s.Select(s.Remaining[0])
		if s.Target() > 1 {
			if err := s.Confirm(); !errors.Is(err, ErrSelectionSizeMismatch) {
				t.Errorf("Round %d: expected ErrSelectionSizeMismatch with partial selection, got %v", round, err)
			}
		}
		s.Deselect(s.Remaining[0])
		mustConfirmRound(t, s)
		if s.Terminal() {
			break
		}
	}
}

func TestConfirmAdvancesPerPlan(t *testing.T) {
	s := newTestState(20, 4) // plan [5 3 1]

	for k := 0; k < len(s.Plan); k++ {
		mustConfirmRound(t, s)
		if k < len(s.Plan)-1 {
			if len(s.Remaining) != s.Plan[k] {
				t.Errorf("After round %d expected %d remaining, got %d", k, s.Plan[k], len(s.Remaining))
			}
			if s.RoundIndex != k+1 {
				t.Errorf("After round %d expected round index %d, got %d", k, k+1, s.RoundIndex)
			}
			if len(s.Rounds) != s.RoundIndex {
				t.Errorf("History length %d != round index %d", len(s.Rounds), s.RoundIndex)
			}
		}
	}

	if !s.Terminal() {
		t.Fatal("Session should be terminal after the full plan")
	}
	if s.Winner != s.Remaining[0] || len(s.Remaining) != 1 {
		t.Errorf("Expected single remaining item as winner, got %q of %v", s.Winner, s.Remaining)
	}
}

// The round-trip law: committing k rounds and undoing k times restores
// remaining, round index, and selection to their exact pre-round values.
func TestConfirmUndoRoundTrip(t *testing.T) {
	s := newTestState(20, 4)

	type snapshot struct {
		remaining  []string
		selected   []string
		roundIndex int
	}
	var snaps []snapshot

	for !s.Terminal() {
		target := s.Target()
		for _, id := range s.Remaining[:target] {
			if err := s.Select(id); err != nil {
				t.Fatalf("Select failed: %v", err)
			}
		}
		snaps = append(snaps, snapshot{
			remaining:  append([]string(nil), s.Remaining...),
			selected:   append([]string(nil), s.Selected...),
			roundIndex: s.RoundIndex,
		})
		if err := s.Confirm(); err != nil {
			t.Fatalf("Confirm failed: %v", err)
		}
	}

	for i := len(snaps) - 1; i >= 0; i-- {
		owner := snaps[i].roundIndex % s.slots()
		if err := s.Undo(owner); err != nil {
			t.Fatalf("Undo of round %d failed: %v", snaps[i].roundIndex, err)
		}
		if !reflect.DeepEqual(s.Remaining, snaps[i].remaining) {
			t.Errorf("Undo %d: remaining %v, want %v", i, s.Remaining, snaps[i].remaining)
		}
		if !reflect.DeepEqual(s.Selected, snaps[i].selected) {
			t.Errorf("Undo %d: selected %v, want %v", i, s.Selected, snaps[i].selected)
		}
		if s.RoundIndex != snaps[i].roundIndex {
			t.Errorf("Undo %d: round index %d, want %d", i, s.RoundIndex, snaps[i].roundIndex)
		}
	}

	if s.Winner != "" {
		t.Errorf("Winner should be cleared after undoing everything, got %q", s.Winner)
	}
	if len(s.Rounds) != 0 {
		t.Errorf("History should be empty, got %d entries", len(s.Rounds))
	}
}

func TestUndoOwnership(t *testing.T) {
	s := newTestState(20, 4) // 3 invitees, round 0 owned by index 0
	mustConfirmRound(t, s)

	if err := s.Undo(1); !errors.Is(err, ErrNotYourUndoTurn) {
		t.Errorf("Expected ErrNotYourUndoTurn for wrong participant, got %v", err)
	}
	if err := s.Undo(0); err != nil {
		t.Errorf("Owner undo failed: %v", err)
	}
}

func TestUndoNothing(t *testing.T) {
	s := newTestState(20, 4)
	if err := s.Undo(0); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Expected ErrNothingToUndo, got %v", err)
	}
}

func TestUndoReversesTerminal(t *testing.T) {
	s := newTestState(8, 3) // plan [3 1], 2 invitees

	mustConfirmRound(t, s) // picker-1 narrows to 3
	mustConfirmRound(t, s) // picker-2 picks the winner
	if !s.Terminal() {
		t.Fatal("Expected terminal state")
	}

	// Round 1 belongs to invitee index 1.
	if err := s.Undo(1); err != nil {
		t.Fatalf("Undo out of terminal failed: %v", err)
	}
	if s.Terminal() || s.Winner != "" {
		t.Error("Winner should be cleared by undo")
	}
	if s.RoundIndex != 1 || len(s.Remaining) != 3 {
		t.Errorf("Expected round 1 with 3 remaining, got round %d with %d", s.RoundIndex, len(s.Remaining))
	}
	if len(s.Selected) != 1 {
		t.Errorf("Undo should restore the committed pick for revision, got %v", s.Selected)
	}
}

func TestResetRedrawsEverything(t *testing.T) {
	s := newTestState(20, 4)
	mustConfirmRound(t, s)
	mustConfirmRound(t, s)

	s.Reset(testItems(20), 4, plan.DefaultTail, plan.DefaultMinReduction)

	if s.RoundIndex != 0 || len(s.Rounds) != 0 || s.Winner != "" || len(s.Selected) != 0 {
		t.Errorf("Reset left residue: %+v", s)
	}
	if len(s.Remaining) != 20 {
		t.Errorf("Reset should restore the full item set, got %d", len(s.Remaining))
	}
	if !reflect.DeepEqual(s.Plan, []int{5, 3, 1}) {
		t.Errorf("Reset should redraw the plan, got %v", s.Plan)
	}
}

func TestCommittedOrderIndependentOfClickOrder(t *testing.T) {
	a := newTestState(10, 3) // plan [3 1]
	b := newTestState(10, 3)

	for _, id := range []string{"item-02", "item-05", "item-08"} {
		if err := a.Select(id); err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range []string{"item-08", "item-02", "item-05"} {
		if err := b.Select(id); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Confirm(); err != nil {
		t.Fatal(err)
	}
	if err := b.Confirm(); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.Remaining, b.Remaining) {
		t.Errorf("Committed remaining depends on click order: %v vs %v", a.Remaining, b.Remaining)
	}
	if !reflect.DeepEqual(a.Remaining, []string{"item-02", "item-05", "item-08"}) {
		t.Errorf("Expected canonical list order, got %v", a.Remaining)
	}
}

func TestRoleName(t *testing.T) {
	if RoleName(0) != "picker-1" || RoleName(2) != "picker-3" {
		t.Errorf("Unexpected role names: %s, %s", RoleName(0), RoleName(2))
	}
}
