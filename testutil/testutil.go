// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/narrowly/auth"
	"github.com/danielhkuo/narrowly/cliparse"
	"github.com/danielhkuo/narrowly/db"
)

var dbCounter atomic.Int64

// SetupTestDB creates a fresh in-memory sqlite database with the full schema.
// Each call gets its own database, so tests stay independent and the suite
// runs without a postgres daemon.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// A single connection keeps the in-memory database alive and serializes
	// writers, which sqlite wants anyway.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3319,
		DatabaseType:     "sqlite",
		DatabaseURL:      ":memory:",
		OrganizerKeySalt: "test-organizer-salt",
	}
}

// CreateTestList creates a list row and returns its ID and organizer key
func CreateTestList(t *testing.T, conn *sql.DB, cfg cliparse.Config, title string) (listID, organizerKey string) {
	t.Helper()

	listID, _ = auth.GenerateID(16)
	organizerKey = auth.GenerateOrganizerKey(listID, cfg.OrganizerKeySalt)

	_, err := conn.Exec(`
		INSERT INTO list (id, title, created_at)
		VALUES ($1, $2, $3)
	`, listID, title, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test list: %v", err)
	}

	return listID, organizerKey
}

// AddTestItems adds n items to a list and returns their IDs in order
func AddTestItems(t *testing.T, conn *sql.DB, listID string, n int) []string {
	t.Helper()

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		itemID, _ := auth.GenerateID(12)
		_, err := conn.Exec(`
			INSERT INTO item (id, list_id, position, title)
			VALUES ($1, $2, $3, $4)
		`, itemID, listID, i, fmt.Sprintf("Item %d", i+1))
		if err != nil {
			t.Fatalf("Failed to create test item: %v", err)
		}
		ids[i] = itemID
	}
	return ids
}

// AddTestInvitee adds an invitee at the given position and returns the
// invite token. The issue timestamp can sit in the past to exercise expiry.
func AddTestInvitee(t *testing.T, conn *sql.DB, listID string, position int, label string, issuedAt time.Time) string {
	t.Helper()

	token := auth.GenerateInviteToken()
	_, err := conn.Exec(`
		INSERT INTO invitee (list_id, position, label, token, issued_at)
		VALUES ($1, $2, $3, $4, $5)
	`, listID, position, label, token, issuedAt)
	if err != nil {
		t.Fatalf("Failed to create test invitee: %v", err)
	}
	return token
}

// AddLegacyInvitee adds an invitee whose token has no issue timestamp
func AddLegacyInvitee(t *testing.T, conn *sql.DB, listID string, position int, label string) string {
	t.Helper()

	token := auth.GenerateInviteToken()
	_, err := conn.Exec(`
		INSERT INTO invitee (list_id, position, label, token, issued_at)
		VALUES ($1, $2, $3, $4, NULL)
	`, listID, position, label, token)
	if err != nil {
		t.Fatalf("Failed to create legacy invitee: %v", err)
	}
	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
