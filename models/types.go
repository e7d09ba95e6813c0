package models

// Request types

type SelectItemRequest struct {
	ItemID string `json:"item_id"`
}

// Domain types

// Item carries the display fields for a candidate. The narrowing engine only
// tracks ids; display fields come from the list store.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Note  string `json:"note,omitempty"`
	Image string `json:"image,omitempty"`
}

// RoundSummary is one committed round as exposed to clients. The pre-round
// remaining set stays server-side; it exists only to support undo.
type RoundSummary struct {
	Round  int      `json:"round"`
	Role   string   `json:"role"`
	Chosen []string `json:"chosen"`
}

// SessionView is the full session state returned by every boundary action and
// pushed to live subscribers, so polling and streaming clients converge on the
// identical payload.
type SessionView struct {
	ListID      string         `json:"list_id"`
	Plan        []int          `json:"plan"`
	RoundIndex  int            `json:"round_index"`
	Target      int            `json:"target"`
	Remaining   []Item         `json:"remaining"`
	Selected    []string       `json:"selected"`
	Rounds      []RoundSummary `json:"rounds"`
	Winner      *Item          `json:"winner,omitempty"`
	ActiveIndex int            `json:"active_index"`
	ActiveRole  string         `json:"active_role,omitempty"`
	Terminal    bool           `json:"terminal"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
