// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidOrganizerKey = errors.New("invalid organizer key")

// TokenTTL is the lifetime of an invite token from its issue timestamp.
const TokenTTL = 7 * 24 * time.Hour

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateOrganizerKey creates an HMAC-based organizer key for a list.
// This is deterministic and verifiable without storing the key.
func GenerateOrganizerKey(listID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(listID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateOrganizerKey checks if the provided organizer key is valid for the list
func ValidateOrganizerKey(listID, key, salt string) error {
	expected := GenerateOrganizerKey(listID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidOrganizerKey
	}
	return nil
}

// GenerateInviteToken creates the random id half of an invite token.
// The issue timestamp is stored alongside it rather than packed into the
// string, so expiry is a pure function of the stored time.
func GenerateInviteToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Expired reports whether a token issued at issuedAt is past its lifetime.
// A zero issuedAt marks a legacy token with no issue record; legacy tokens
// never expire and are handled as their own variant by callers.
func Expired(issuedAt, now time.Time) bool {
	if issuedAt.IsZero() {
		return false
	}
	return now.Sub(issuedAt) > TokenTTL
}

// ExpiresAt returns the moment a token issued at issuedAt stops working.
// Zero in, zero out.
func ExpiresAt(issuedAt time.Time) time.Time {
	if issuedAt.IsZero() {
		return time.Time{}
	}
	return issuedAt.Add(TokenTTL)
}

// IsLegacy reports whether an issue timestamp marks a pre-expiry token.
func IsLegacy(issuedAt time.Time) bool {
	return issuedAt.IsZero()
}
