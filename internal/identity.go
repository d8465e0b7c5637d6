package internal

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

// Role is the participation mode chosen during onboarding
type Role string

const (
	RoleMentee Role = "mentee"
	RoleMentor Role = "mentor"
)

// UserIDSuffixRange bounds the random numeric suffix appended to derived ids
const UserIDSuffixRange = 1000

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleMentee || r == RoleMentor
}

// ParseRole converts user input into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", &ValidationError{Field: "role", Reason: fmt.Sprintf("must be %q or %q, got %q", RoleMentee, RoleMentor, s)}
	}
	return r, nil
}

// Identity is the locally persisted record of the acting person
type Identity struct {
	UserID  string `json:"userId" yaml:"user_id"`
	Name    string `json:"name" yaml:"name"`
	Role    Role   `json:"role" yaml:"role"`
	Context string `json:"context" yaml:"context"`
}

// Validate checks that every field of the identity is usable
func (i *Identity) Validate() error {
	if i == nil {
		return &ValidationError{Field: "identity", Reason: "missing"}
	}
	if strings.TrimSpace(i.UserID) == "" || strings.IndexFunc(i.UserID, unicode.IsSpace) >= 0 {
		return &ValidationError{Field: "userId", Reason: "must be non-empty without whitespace"}
	}
	if strings.TrimSpace(i.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !i.Role.Valid() {
		return &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", i.Role)}
	}
	if strings.TrimSpace(i.Context) == "" {
		return &ValidationError{Field: "context", Reason: "must not be empty"}
	}
	return nil
}

// IsMentee reports whether submissions should chain into a matches fetch
func (i *Identity) IsMentee() bool {
	return i != nil && i.Role == RoleMentee
}

// Profile is what the onboarding flow collects before an id exists
type Profile struct {
	Role    Role
	Name    string
	Context string
}

// DeriveUserID builds "<lowercased name with whitespace runs as _>_<suffix>".
// Collisions are possible; the suffix only makes them less likely.
func DeriveUserID(name string, suffix int) string {
	base := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	return fmt.Sprintf("%s_%d", base, suffix)
}

// RandomSuffix returns a suffix in [0, UserIDSuffixRange)
func RandomSuffix() int {
	return rand.Intn(UserIDSuffixRange)
}

// NewIdentity turns a completed profile into an Identity using the given
// suffix source.
func NewIdentity(p Profile, suffix func() int) *Identity {
	if suffix == nil {
		suffix = RandomSuffix
	}
	name := strings.TrimSpace(p.Name)
	return &Identity{
		UserID:  DeriveUserID(name, suffix()),
		Name:    name,
		Role:    p.Role,
		Context: strings.TrimSpace(p.Context),
	}
}
