package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/openup-cli/internal"
)

// JSONLExporter exports reports in JSONL format (one match per line)
type JSONLExporter struct{}

// Export writes one line per match, ranked in backend order
func (e *JSONLExporter) Export(report *internal.Report, w io.Writer) error {
	enc := json.NewEncoder(w)

	var userID string
	if report.Identity != nil {
		userID = report.Identity.UserID
	}

	for i, match := range report.Matches {
		obj := map[string]interface{}{
			"rank":      i + 1,
			"user_id":   userID,
			"mentor_id": match.MentorID,
			"score":     match.Score,
			"rationale": match.Rationale,
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode match: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
