package internal

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultTopK is the number of matches requested after a mentee submission
const DefaultTopK = 3

// SessionRequest is the body of POST /session
type SessionRequest struct {
	UserID     string `json:"user_id"`
	UserType   Role   `json:"user_type"`
	Transcript string `json:"transcript"`
}

// SessionReceipt is the optional acknowledgement returned by POST /session
type SessionReceipt struct {
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// MatchRequest is the body of POST /match
type MatchRequest struct {
	UserID string `json:"user_id"`
	TopK   int    `json:"top_k"`
}

// MatchResult is one ranked candidate, in backend order
type MatchResult struct {
	MentorID  string  `json:"mentor_id" yaml:"mentor_id"`
	Score     float64 `json:"score" yaml:"score"`
	Rationale string  `json:"rationale" yaml:"rationale"`
}

// Percent renders the score as a whole percentage, e.g. "87%"
func (m MatchResult) Percent() string {
	return FormatScore(m.Score)
}

// Initials returns the first two characters of the mentor id, upper-cased
func (m MatchResult) Initials() string {
	r := []rune(m.MentorID)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// FormatScore renders a [0,1] score as a rounded percentage
func FormatScore(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// HealthStatus is the backend-defined health payload
type HealthStatus map[string]any

// Healthy reports whether the payload advertises a healthy status.
// An empty payload counts as healthy since the request itself succeeded.
func (h HealthStatus) Healthy() bool {
	s, ok := h["status"].(string)
	if !ok {
		return true
	}
	return s == "healthy" || s == "ok"
}

// GraphSnapshot maps user ids to backend-defined node data. The values are
// kept opaque.
type GraphSnapshot map[string]json.RawMessage

// UserCount returns the number of users in the snapshot
func (g GraphSnapshot) UserCount() int {
	return len(g)
}

// UserIDs returns the snapshot keys in sorted order
func (g GraphSnapshot) UserIDs() []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// JSON returns the indented raw serialization used by the graph view
func (g GraphSnapshot) JSON() string {
	if g == nil {
		return "null"
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Report is the exportable summary of a signed-in user's results
type Report struct {
	Identity         *Identity     `json:"identity" yaml:"identity"`
	Matches          []MatchResult `json:"matches" yaml:"matches"`
	MatchesUpdatedAt time.Time     `json:"matches_updated_at,omitempty" yaml:"matches_updated_at,omitempty"`
	GraphUsers       int           `json:"graph_users" yaml:"graph_users"`
	GraphUpdatedAt   time.Time     `json:"graph_updated_at,omitempty" yaml:"graph_updated_at,omitempty"`
	GeneratedAt      time.Time     `json:"generated_at" yaml:"generated_at"`
}
