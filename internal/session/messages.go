package session

import "github.com/iksnae/openup-cli/internal"

// Result messages carry the generation they were issued under.

type sessionSubmittedMsg struct {
	gen     uint64
	userID  string
	receipt *internal.SessionReceipt
	err     error
}

type matchesFetchedMsg struct {
	gen     uint64
	userID  string
	chained bool
	matches []internal.MatchResult
	err     error
}

type graphRefreshedMsg struct {
	gen   uint64
	graph internal.GraphSnapshot
	err   error
}
