package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/openup-cli/internal"
)

// MarkdownExporter exports reports in Markdown format
type MarkdownExporter struct{}

// Export exports a report to Markdown format
func (e *MarkdownExporter) Export(report *internal.Report, w io.Writer) error {
	if report.Identity != nil {
		_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(report.Identity.Name))
		_, _ = fmt.Fprintf(w, "**User ID:** %s  \n", report.Identity.UserID)
		_, _ = fmt.Fprintf(w, "**Role:** %s  \n", report.Identity.Role)
		_, _ = fmt.Fprintf(w, "**Context:** %s\n\n", escapeMarkdown(report.Identity.Context))
	} else {
		_, _ = fmt.Fprintf(w, "# OpenUp report\n\n")
	}
	_, _ = fmt.Fprintf(w, "**Network users:** %d\n\n", report.GraphUsers)

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Recommended Mentors\n\n")

	if len(report.Matches) == 0 {
		_, _ = fmt.Fprintf(w, "_No matches yet._\n")
		return nil
	}

	for i, match := range report.Matches {
		_, _ = fmt.Fprintf(w, "%d. **%s** (%s Match)\n\n   %s\n\n", i+1, match.MentorID, match.Percent(), escapeMarkdown(match.Rationale))
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
