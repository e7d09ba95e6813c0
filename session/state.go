// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"fmt"
	"time"

	"github.com/danielhkuo/narrowly/plan"
)

// SchemaVersion is the current shape of the serialized state. Repair migrates
// anything older (or malformed) to this version on load.
const SchemaVersion = 1

// RoundRecord is one committed round. Before holds the remaining set as it
// stood when the round started; undo restores it.
type RoundRecord struct {
	Round  int      `json:"round"`
	Role   string   `json:"role"`
	Chosen []string `json:"chosen"`
	Before []string `json:"before"`
}

// State is the durable record of a single narrowing run. It is mutated only
// through the transition methods below and persisted after every successful
// transition.
type State struct {
	ListID           string        `json:"list_id"`
	Version          int           `json:"version"`
	Plan             []int         `json:"plan"`
	RoundIndex       int           `json:"round_index"`
	Remaining        []string      `json:"remaining"`
	Selected         []string      `json:"selected"`
	Rounds           []RoundRecord `json:"rounds"`
	Winner           string        `json:"winner,omitempty"`
	ParticipantCount int           `json:"participant_count"`
	UpdatedAt        time.Time     `json:"updated_at"`

	// Revision is the store's optimistic-concurrency counter. It is not part
	// of the serialized payload.
	Revision int64 `json:"-"`
}

// NewState seeds a session from the full item set and a fresh plan.
// participantCount includes the organizer.
func NewState(listID string, itemIDs []string, participantCount int, tail []int, minReduction float64) *State {
	s := &State{
		ListID:           listID,
		Version:          SchemaVersion,
		Plan:             plan.Compute(len(itemIDs), participantCount, tail, minReduction),
		Remaining:        append([]string(nil), itemIDs...),
		ParticipantCount: participantCount,
		UpdatedAt:        time.Now(),
	}
	if len(s.Remaining) == 1 {
		s.Winner = s.Remaining[0]
	}
	return s
}

// RoleName returns the display role for the participant at the given
// position. Roles are derived from position, never stored.
func RoleName(index int) string {
	return fmt.Sprintf("picker-%d", index+1)
}

// Terminal reports whether the session has produced a winner.
func (s *State) Terminal() bool {
	return s.Winner != ""
}

// Target is the number of items that must remain after the current round,
// or 0 when no round is in progress.
func (s *State) Target() int {
	if s.RoundIndex < 0 || s.RoundIndex >= len(s.Plan) {
		return 0
	}
	return s.Plan[s.RoundIndex]
}

// slots is the number of narrowing turns in a rotation. The organizer never
// takes one, and a session always behaves as if at least one invitee exists.
func (s *State) slots() int {
	pc := s.ParticipantCount
	if pc < 2 {
		pc = 2
	}
	return pc - 1
}

// ActiveIndex is the invitee position whose turn it is, or -1 once terminal.
func (s *State) ActiveIndex() int {
	if s.Terminal() {
		return -1
	}
	return s.RoundIndex % s.slots()
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Select adds an item to the in-progress selection. Selecting an already
// selected item is a no-op, as is selecting once the round target is reached;
// the client is expected to disable the control, but the server must not
// corrupt state either way.
func (s *State) Select(itemID string) error {
	if !contains(s.Remaining, itemID) {
		return ErrItemNotInRemaining
	}
	if contains(s.Selected, itemID) {
		return nil
	}
	if len(s.Selected) >= s.Target() {
		return nil
	}
	s.Selected = append(s.Selected, itemID)
	return nil
}

// Deselect removes an item from the in-progress selection; no-op if absent.
func (s *State) Deselect(itemID string) error {
	for i, v := range s.Selected {
		if v == itemID {
			s.Selected = append(s.Selected[:i], s.Selected[i+1:]...)
			return nil
		}
	}
	return nil
}

// Confirm commits the current round: the selection becomes the remaining set,
// a history entry is appended, and the round index advances. When the plan is
// exhausted or one item remains, the winner is set and the round index stays
// at the value that made the session terminal.
func (s *State) Confirm() error {
	if len(s.Selected) != s.Target() || s.Target() == 0 {
		return ErrSelectionSizeMismatch
	}

	// Keep canonical list order in both the history entry and the new
	// remaining set, so committed state is independent of click order.
	chosen := make([]string, 0, len(s.Selected))
	for _, id := range s.Remaining {
		if contains(s.Selected, id) {
			chosen = append(chosen, id)
		}
	}

	s.Rounds = append(s.Rounds, RoundRecord{
		Round:  s.RoundIndex,
		Role:   RoleName(s.ActiveIndex()),
		Chosen: chosen,
		Before: s.Remaining,
	})
	s.Remaining = chosen
	s.Selected = nil
	s.RoundIndex++

	if s.RoundIndex >= len(s.Plan) || len(s.Remaining) == 1 {
		s.Winner = s.Remaining[0]
	}
	return nil
}

// Undo reverses the most recently committed round. Only the participant who
// owns that round may undo it; their selection is restored so they can revise
// the pick rather than start from empty.
func (s *State) Undo(callerIndex int) error {
	if len(s.Rounds) == 0 || s.RoundIndex == 0 {
		return ErrNothingToUndo
	}
	if callerIndex != (s.RoundIndex-1)%s.slots() {
		return ErrNotYourUndoTurn
	}

	entry := s.Rounds[len(s.Rounds)-1]
	s.Rounds = s.Rounds[:len(s.Rounds)-1]
	s.Remaining = entry.Before
	s.Selected = append([]string(nil), entry.Chosen...)
	s.RoundIndex--
	s.Winner = ""
	if len(s.Remaining) == 1 {
		s.Winner = s.Remaining[0]
	}
	return nil
}

// Reset reinitializes the session: fresh plan, full item set, no history, no
// winner.
func (s *State) Reset(itemIDs []string, participantCount int, tail []int, minReduction float64) {
	s.Plan = plan.Compute(len(itemIDs), participantCount, tail, minReduction)
	s.RoundIndex = 0
	s.Remaining = append([]string(nil), itemIDs...)
	s.Selected = nil
	s.Rounds = nil
	s.Winner = ""
	s.ParticipantCount = participantCount
	if len(s.Remaining) == 1 {
		s.Winner = s.Remaining[0]
	}
}
