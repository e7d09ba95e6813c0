// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/narrowly/auth"
	"github.com/danielhkuo/narrowly/cliparse"
	"github.com/danielhkuo/narrowly/middleware"
	"github.com/danielhkuo/narrowly/models"
	"github.com/danielhkuo/narrowly/session"
)

type SessionHandler struct {
	engine *session.Engine
	cfg    cliparse.Config
}

func NewSessionHandler(engine *session.Engine, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{engine: engine, cfg: cfg}
}

// GetState handles GET /sessions/:list
// Creates the session on first access for a known list.
func (h *SessionHandler) GetState(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("list")
	if listID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad_request", "list id is required")
		return
	}

	view, err := h.engine.Get(r.Context(), listID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Select handles POST /sessions/:list/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	listID, token, ok := requireToken(w, r)
	if !ok {
		return
	}
	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	view, err := h.engine.Select(r.Context(), listID, token, itemID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Deselect handles POST /sessions/:list/deselect
func (h *SessionHandler) Deselect(w http.ResponseWriter, r *http.Request) {
	listID, token, ok := requireToken(w, r)
	if !ok {
		return
	}
	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	view, err := h.engine.Deselect(r.Context(), listID, token, itemID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Confirm handles POST /sessions/:list/confirm
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	listID, token, ok := requireToken(w, r)
	if !ok {
		return
	}

	view, err := h.engine.Confirm(r.Context(), listID, token)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	slog.Info("round confirmed", "list_id", listID, "round_index", view.RoundIndex, "terminal", view.Terminal)
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Undo handles POST /sessions/:list/undo
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	listID, token, ok := requireToken(w, r)
	if !ok {
		return
	}

	view, err := h.engine.Undo(r.Context(), listID, token)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	slog.Info("round undone", "list_id", listID, "round_index", view.RoundIndex)
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Reset handles POST /sessions/:list/reset
// Accepts either the organizer key or, unless the server is configured with
// RESET_ORGANIZER_ONLY, any valid invite token.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("list")
	if listID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad_request", "list id is required")
		return
	}

	asOrganizer := false
	if key := r.Header.Get("X-Organizer-Key"); key != "" {
		if err := auth.ValidateOrganizerKey(listID, key, h.cfg.OrganizerKeySalt); err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Invalid organizer key")
			return
		}
		asOrganizer = true
	}
	if h.cfg.ResetOrganizerOnly && !asOrganizer {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Reset requires the organizer key")
		return
	}

	token := r.Header.Get("X-Invite-Token")
	view, err := h.engine.Reset(r.Context(), listID, token, asOrganizer)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	slog.Info("session reset", "list_id", listID, "as_organizer", asOrganizer)
	middleware.JSONResponse(w, http.StatusOK, view)
}

func requireToken(w http.ResponseWriter, r *http.Request) (listID, token string, ok bool) {
	listID = r.PathValue("list")
	if listID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad_request", "list id is required")
		return "", "", false
	}
	token = r.Header.Get("X-Invite-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid_token", "X-Invite-Token header required")
		return "", "", false
	}
	return listID, token, true
}

func parseItemID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req models.SelectItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return "", false
	}
	if req.ItemID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad_request", "item_id is required")
		return "", false
	}
	return req.ItemID, true
}

// writeEngineError maps engine error kinds to HTTP statuses and stable codes.
// 401s mean "re-issue the invite", 409s mean "wait or refetch", 400s mean
// "this never needed to happen".
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "session_not_found", "Session not found")
	case errors.Is(err, session.ErrInvalidToken):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Invalid invite token for this list")
	case errors.Is(err, session.ErrTokenExpired):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "token_expired", err.Error())
	case errors.Is(err, session.ErrOutOfTurn):
		middleware.ErrorResponse(w, http.StatusConflict, "out_of_turn", err.Error())
	case errors.Is(err, session.ErrNotYourUndoTurn):
		middleware.ErrorResponse(w, http.StatusConflict, "not_your_undo_turn", "Only the participant who committed the round may undo it")
	case errors.Is(err, session.ErrSelectionSizeMismatch):
		middleware.ErrorResponse(w, http.StatusConflict, "selection_size_mismatch", "Selection does not match the round target")
	case errors.Is(err, session.ErrItemNotInRemaining):
		middleware.ErrorResponse(w, http.StatusBadRequest, "item_not_in_remaining_set", "Item is not in the remaining set")
	case errors.Is(err, session.ErrNothingToUndo):
		middleware.ErrorResponse(w, http.StatusConflict, "nothing_to_undo", "No committed round to undo")
	case errors.Is(err, session.ErrStoreUnavailable):
		slog.Error("store unavailable", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "store_unavailable", "Storage temporarily unavailable, retry")
	default:
		slog.Error("unexpected engine error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "internal", "Internal error")
	}
}
