// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/narrowly/models"
	"github.com/danielhkuo/narrowly/session"
)

// SQL implements the engine's Store and ListStore contracts on database/sql.
// The queries are portable across lib/pq and modernc sqlite: $n placeholders,
// no server-side time defaults, JSON payloads as TEXT.
type SQL struct {
	db *sql.DB
}

func New(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// Load returns the session state for a list, or (nil, nil) when none exists.
func (s *SQL) Load(ctx context.Context, listID string) (*session.State, error) {
	var payload string
	var revision int64
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, revision FROM narrowing_session WHERE list_id = $1
	`, listID).Scan(&payload, &revision)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var st session.State
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return nil, fmt.Errorf("failed to decode session payload: %w", err)
	}
	st.Revision = revision
	return &st, nil
}

// Save persists the state with an optimistic revision check. A zero revision
// inserts; anything else updates only if the stored revision still matches.
// Either way a concurrent winner surfaces as session.ErrRevisionConflict.
func (s *SQL) Save(ctx context.Context, st *session.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode session payload: %w", err)
	}

	if st.Revision == 0 {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO narrowing_session (list_id, payload, revision, updated_at)
			VALUES ($1, $2, 1, $3)
		`, st.ListID, string(payload), time.Now())
		if err != nil {
			if isUniqueViolation(err) {
				return session.ErrRevisionConflict
			}
			return fmt.Errorf("failed to insert session: %w", err)
		}
		st.Revision = 1
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE narrowing_session
		SET payload = $1, revision = revision + 1, updated_at = $2
		WHERE list_id = $3 AND revision = $4
	`, string(payload), time.Now(), st.ListID, st.Revision)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return session.ErrRevisionConflict
	}
	st.Revision++
	return nil
}

// Items returns the ordered candidate set for a list.
func (s *SQL) Items(ctx context.Context, listID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, note, image
		FROM item
		WHERE list_id = $1
		ORDER BY position
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		var note, image sql.NullString
		if err := rows.Scan(&it.ID, &it.Title, &note, &image); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.Note = note.String
		it.Image = image.String
		items = append(items, it)
	}
	return items, rows.Err()
}

// Invitees returns the ordered participant roster for a list.
func (s *SQL) Invitees(ctx context.Context, listID string) ([]session.Invitee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, label, token, issued_at
		FROM invitee
		WHERE list_id = $1
		ORDER BY position
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitees: %w", err)
	}
	defer rows.Close()

	var invitees []session.Invitee
	for rows.Next() {
		inv, err := scanInvitee(rows)
		if err != nil {
			return nil, err
		}
		invitees = append(invitees, inv)
	}
	return invitees, rows.Err()
}

// InviteeByToken resolves an invite token, or (nil, nil) when unknown.
func (s *SQL) InviteeByToken(ctx context.Context, listID, token string) (*session.Invitee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT position, label, token, issued_at
		FROM invitee
		WHERE list_id = $1 AND token = $2
	`, listID, token)

	inv, err := scanInvitee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvitee(row scanner) (session.Invitee, error) {
	var inv session.Invitee
	var issuedAt sql.NullTime
	if err := row.Scan(&inv.Position, &inv.Label, &inv.Token, &issuedAt); err != nil {
		if err == sql.ErrNoRows {
			return inv, err
		}
		return inv, fmt.Errorf("failed to scan invitee: %w", err)
	}
	// NULL issued_at marks a legacy token from before expiry tracking.
	if issuedAt.Valid {
		inv.IssuedAt = issuedAt.Time
	}
	return inv, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") // postgres
}

var (
	_ session.Store     = (*SQL)(nil)
	_ session.ListStore = (*SQL)(nil)
)
