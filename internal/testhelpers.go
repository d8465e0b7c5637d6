package internal

import (
	"time"
)

// CreateTestIdentity creates a valid identity with the given role
func CreateTestIdentity(name string, role Role) *Identity {
	return NewIdentity(Profile{
		Role:    role,
		Name:    name,
		Context: "grow as an engineer",
	}, func() int { return 42 })
}

// CreateTestMatches creates n ranked matches with descending scores
func CreateTestMatches(n int) []MatchResult {
	matches := make([]MatchResult, 0, n)
	for i := 0; i < n; i++ {
		matches = append(matches, MatchResult{
			MentorID:  "mentor_" + string(rune('a'+i)),
			Score:     0.9 - float64(i)*0.1,
			Rationale: "shared focus on distributed systems",
		})
	}
	return matches
}

// CreateTestReport creates a report for a mentee with two matches
func CreateTestReport() *Report {
	return &Report{
		Identity:    CreateTestIdentity("Alex Chen", RoleMentee),
		Matches:     CreateTestMatches(2),
		GraphUsers:  7,
		GeneratedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}
