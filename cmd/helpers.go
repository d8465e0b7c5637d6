package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/iksnae/openup-cli/internal"
)

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printIdentity(w io.Writer, identity *internal.Identity) {
	fmt.Fprintf(w, "User ID: %s\n", identity.UserID)
	fmt.Fprintf(w, "Name:    %s\n", identity.Name)
	fmt.Fprintf(w, "Role:    %s\n", identity.Role)
	if identity.Context != "" {
		fmt.Fprintf(w, "Context: %s\n", identity.Context)
	}
}

func printMatches(w io.Writer, matches []internal.MatchResult) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches yet.")
		return
	}
	for i, m := range matches {
		fmt.Fprintf(w, "%d. %s  %s Match\n", i+1, m.MentorID, m.Percent())
		if m.Rationale != "" {
			fmt.Fprintf(w, "   %s\n", m.Rationale)
		}
	}
}
