// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/narrowly/models"
	"github.com/danielhkuo/narrowly/testutil"
)

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	JSONResponse(w, http.StatusCreated, map[string]string{"hello": "world"})

	testutil.AssertStatus(t, w, http.StatusCreated)
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	var body map[string]string
	testutil.AssertJSON(t, w, &body)
	if body["hello"] != "world" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusConflict, "out_of_turn", "round 2 belongs to picker-3")

	testutil.AssertStatus(t, w, http.StatusConflict)
	var body models.ErrorResponse
	testutil.AssertJSON(t, w, &body)
	if body.Error != "Conflict" || body.Code != "out_of_turn" {
		t.Errorf("Unexpected error body: %+v", body)
	}
	if body.Message != "round 2 belongs to picker-3" {
		t.Errorf("Unexpected message: %q", body.Message)
	}
}

func TestParseJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"item_id":"abc"}`))
	var body models.SelectItemRequest
	if err := ParseJSONBody(req, &body); err != nil {
		t.Fatalf("ParseJSONBody failed: %v", err)
	}
	if body.ItemID != "abc" {
		t.Errorf("Expected item_id abc, got %q", body.ItemID)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader("not json"))
	if err := ParseJSONBody(req, &body); err == nil {
		t.Error("Malformed JSON should fail")
	}
}

func TestWithLogging(t *testing.T) {
	called := false
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/health", nil))

	if !called {
		t.Error("Wrapped handler was not invoked")
	}
	testutil.AssertStatus(t, w, http.StatusNoContent)
}

func TestCORSHeaders(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected origin echoed back, got %q", got)
	}
	allowed := w.Header().Get("Access-Control-Allow-Headers")
	if !strings.Contains(allowed, "X-Invite-Token") || !strings.Contains(allowed, "X-Organizer-Key") {
		t.Errorf("Auth headers missing from CORS allowlist: %q", allowed)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight should not reach the handler")
	}))

	req := httptest.NewRequest("OPTIONS", "/sessions/abc/select", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
}
