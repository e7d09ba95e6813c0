// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/narrowly/auth"
	"github.com/danielhkuo/narrowly/models"
)

// Store is the durable per-session read-modify-write collaborator. Load
// returns (nil, nil) when no state exists for the list yet. Save must be
// atomic and fail with ErrRevisionConflict when a concurrent writer won.
type Store interface {
	Load(ctx context.Context, listID string) (*State, error)
	Save(ctx context.Context, s *State) error
}

// Invitee is one entry of a list's ordered participant roster. Position is
// fixed at invite time and determines turn rotation.
type Invitee struct {
	Position int
	Label    string
	Token    string
	IssuedAt time.Time
}

// ListStore supplies the candidate set and invitee roster for a list. It is
// owned by the surrounding list-management system; the engine only reads it.
type ListStore interface {
	Items(ctx context.Context, listID string) ([]models.Item, error)
	Invitees(ctx context.Context, listID string) ([]Invitee, error)
	InviteeByToken(ctx context.Context, listID, token string) (*Invitee, error)
}

// Publisher receives every committed state change for fan-out to live
// viewers. Delivery is best-effort and must never fail the mutation.
type Publisher interface {
	Publish(sessionID string, view models.SessionView)
}

// Options tune the engine. Zero values fall back to the package defaults.
type Options struct {
	Tail               []int
	MinReduction       float64
	TokenTTL           time.Duration
	ResetOrganizerOnly bool
}

// Engine applies validated narrowing actions to session state. All mutations
// of one session funnel through its read-modify-write loop; the store's
// revision check is the serialization point.
type Engine struct {
	sessions Store
	lists    ListStore
	pub      Publisher
	opts     Options
}

func NewEngine(sessions Store, lists ListStore, pub Publisher, opts Options) *Engine {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = auth.TokenTTL
	}
	return &Engine{sessions: sessions, lists: lists, pub: pub, opts: opts}
}

// ResetOrganizerOnly reports whether reset is gated to the organizer key.
func (e *Engine) ResetOrganizerOnly() bool {
	return e.opts.ResetOrganizerOnly
}

// saveAttempts bounds the optimistic-concurrency retry loop. Conflicts only
// occur when two actions race on the same session, so contention is tiny.
const saveAttempts = 5

// Get returns the current session state, creating and persisting it on first
// access for a known list.
func (e *Engine) Get(ctx context.Context, listID string) (models.SessionView, error) {
	items, invitees, err := e.roster(ctx, listID)
	if err != nil {
		return models.SessionView{}, err
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		s, dirty, err := e.loadOrCreate(ctx, listID, items, invitees)
		if err != nil {
			return models.SessionView{}, err
		}
		if !dirty {
			return e.view(s, items), nil
		}
		err = e.sessions.Save(ctx, s)
		if errors.Is(err, ErrRevisionConflict) {
			continue
		}
		if err != nil {
			return models.SessionView{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return e.view(s, items), nil
	}
	return models.SessionView{}, fmt.Errorf("%w: save contention", ErrStoreUnavailable)
}

// Select adds an item to the active participant's in-progress selection.
func (e *Engine) Select(ctx context.Context, listID, token, itemID string) (models.SessionView, error) {
	return e.act(ctx, listID, token, func(s *State) error {
		return s.Select(itemID)
	})
}

// Deselect removes an item from the in-progress selection.
func (e *Engine) Deselect(ctx context.Context, listID, token, itemID string) (models.SessionView, error) {
	return e.act(ctx, listID, token, func(s *State) error {
		return s.Deselect(itemID)
	})
}

// Confirm commits the current round.
func (e *Engine) Confirm(ctx context.Context, listID, token string) (models.SessionView, error) {
	return e.act(ctx, listID, token, func(s *State) error {
		return s.Confirm()
	})
}

// Undo reverses the most recently committed round. Unlike the other actions
// it remains available from the terminal state, and its ownership rule (the
// participant whose round is being undone) replaces the usual turn check.
func (e *Engine) Undo(ctx context.Context, listID, token string) (models.SessionView, error) {
	items, invitees, err := e.roster(ctx, listID)
	if err != nil {
		return models.SessionView{}, err
	}
	idx, err := e.resolveToken(ctx, listID, token)
	if err != nil {
		return models.SessionView{}, err
	}
	return e.mutate(ctx, listID, items, invitees, func(s *State) error {
		return s.Undo(idx)
	})
}

// Reset reinitializes the session with a freshly drawn plan. When asOrganizer
// is false a valid participant token is required; policy for who may reset is
// enforced at the boundary.
func (e *Engine) Reset(ctx context.Context, listID, token string, asOrganizer bool) (models.SessionView, error) {
	items, invitees, err := e.roster(ctx, listID)
	if err != nil {
		return models.SessionView{}, err
	}
	if !asOrganizer {
		if _, err := e.resolveToken(ctx, listID, token); err != nil {
			return models.SessionView{}, err
		}
	}
	return e.mutate(ctx, listID, items, invitees, func(s *State) error {
		s.Reset(itemIDs(items), len(invitees)+1, e.opts.Tail, e.opts.MinReduction)
		return nil
	})
}

// act runs a turn-checked intra-round action: resolve the token, verify the
// caller holds the turn, then apply.
func (e *Engine) act(ctx context.Context, listID, token string, apply func(*State) error) (models.SessionView, error) {
	items, invitees, err := e.roster(ctx, listID)
	if err != nil {
		return models.SessionView{}, err
	}
	idx, err := e.resolveToken(ctx, listID, token)
	if err != nil {
		return models.SessionView{}, err
	}
	return e.mutate(ctx, listID, items, invitees, func(s *State) error {
		// Nothing but undo and reset leaves the terminal state; once a winner
		// exists nobody holds a narrowing turn.
		if s.Terminal() {
			return fmt.Errorf("%w: session already has a winner", ErrOutOfTurn)
		}
		if !CanAct(s, idx) {
			return fmt.Errorf("%w: round %d belongs to %s", ErrOutOfTurn, s.RoundIndex, RoleName(s.ActiveIndex()))
		}
		return apply(s)
	})
}

// mutate is the serialized read-modify-write: load (creating lazily), apply,
// persist, then fan out the committed state. A failed apply leaves nothing
// written; a revision conflict replays the whole cycle on fresh state.
func (e *Engine) mutate(ctx context.Context, listID string, items []models.Item, invitees []Invitee, apply func(*State) error) (models.SessionView, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		s, _, err := e.loadOrCreate(ctx, listID, items, invitees)
		if err != nil {
			return models.SessionView{}, err
		}
		if err := apply(s); err != nil {
			return models.SessionView{}, err
		}
		s.UpdatedAt = time.Now()
		err = e.sessions.Save(ctx, s)
		if errors.Is(err, ErrRevisionConflict) {
			continue
		}
		if err != nil {
			return models.SessionView{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		view := e.view(s, items)
		e.pub.Publish(listID, view)
		return view, nil
	}
	return models.SessionView{}, fmt.Errorf("%w: save contention", ErrStoreUnavailable)
}

func (e *Engine) roster(ctx context.Context, listID string) ([]models.Item, []Invitee, error) {
	items, err := e.lists.Items(ctx, listID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(items) == 0 {
		return nil, nil, ErrSessionNotFound
	}
	invitees, err := e.lists.Invitees(ctx, listID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return items, invitees, nil
}

// resolveToken maps an invite token to a participant index, enforcing the
// 7-day expiry rule. Legacy tokens without an issue timestamp are accepted
// and logged as their own variant.
func (e *Engine) resolveToken(ctx context.Context, listID, token string) (int, error) {
	if token == "" {
		return -1, ErrInvalidToken
	}
	inv, err := e.lists.InviteeByToken(ctx, listID, token)
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if inv == nil {
		return -1, ErrInvalidToken
	}
	if auth.IsLegacy(inv.IssuedAt) {
		slog.Info("legacy invite token without issue timestamp", "list_id", listID, "position", inv.Position)
		return inv.Position, nil
	}
	now := time.Now()
	if auth.Expired(inv.IssuedAt, now) {
		return -1, fmt.Errorf("%w %s", ErrTokenExpired, humanize.Time(auth.ExpiresAt(inv.IssuedAt)))
	}
	return inv.Position, nil
}

// loadOrCreate returns the session state for a list, seeding it lazily on
// first access. The dirty result reports whether the state must be persisted
// (newly created or repaired on load).
func (e *Engine) loadOrCreate(ctx context.Context, listID string, items []models.Item, invitees []Invitee) (*State, bool, error) {
	s, err := e.sessions.Load(ctx, listID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if s == nil {
		s = NewState(listID, itemIDs(items), len(invitees)+1, e.opts.Tail, e.opts.MinReduction)
		return s, true, nil
	}
	dirty := Repair(s, itemIDs(items), len(invitees), e.opts.Tail, e.opts.MinReduction)
	if dirty {
		slog.Info("repaired session state on load", "list_id", listID)
	}
	return s, dirty, nil
}

func itemIDs(items []models.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// view resolves the state's item ids against display fields and derives the
// turn fields clients render.
func (e *Engine) view(s *State, items []models.Item) models.SessionView {
	byID := make(map[string]models.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	resolve := func(id string) models.Item {
		if it, ok := byID[id]; ok {
			return it
		}
		return models.Item{ID: id, Title: id}
	}

	remaining := make([]models.Item, len(s.Remaining))
	for i, id := range s.Remaining {
		remaining[i] = resolve(id)
	}
	rounds := make([]models.RoundSummary, len(s.Rounds))
	for i, r := range s.Rounds {
		rounds[i] = models.RoundSummary{Round: r.Round, Role: r.Role, Chosen: r.Chosen}
	}

	v := models.SessionView{
		ListID:      s.ListID,
		Plan:        s.Plan,
		RoundIndex:  s.RoundIndex,
		Target:      s.Target(),
		Remaining:   remaining,
		Selected:    append([]string{}, s.Selected...),
		Rounds:      rounds,
		ActiveIndex: s.ActiveIndex(),
		Terminal:    s.Terminal(),
	}
	if s.Terminal() {
		w := resolve(s.Winner)
		v.Winner = &w
	} else {
		v.ActiveRole = RoleName(s.ActiveIndex())
	}
	return v
}
