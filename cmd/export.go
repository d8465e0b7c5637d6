package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/iksnae/openup-cli/internal"
	"github.com/iksnae/openup-cli/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your identity and cached results",
	Long: `Export the saved identity together with its cached matches and graph
summary to various formats (json, yaml, jsonl, md).

Nothing is fetched; run 'openup matches' first for fresh results.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		identity, ok := a.store.Load()
		if !ok {
			return errNotSignedIn
		}
		report := buildReport(a.cache, identity, time.Now())

		if exportOutput == "" || exportOutput == "-" {
			if err := exporter.Export(report, cmd.OutOrStdout()); err != nil {
				return &internal.ExportError{Format: exportFormat, Path: "stdout", Err: err}
			}
			return nil
		}

		f, err := os.Create(exportOutput)
		if err != nil {
			return &internal.ExportError{Format: exportFormat, Path: exportOutput, Err: err}
		}
		if err := exporter.Export(report, f); err != nil {
			_ = f.Close()
			return &internal.ExportError{Format: exportFormat, Path: exportOutput, Err: err}
		}
		if err := f.Close(); err != nil {
			return &internal.ExportError{Format: exportFormat, Path: exportOutput, Err: err}
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Exported %d matches to %s", len(report.Matches), exportOutput))
		return nil
	},
}

// buildReport gathers what the cache knows about identity
func buildReport(cache *internal.ResultCache, identity *internal.Identity, now time.Time) *internal.Report {
	report := &internal.Report{
		Identity:    identity,
		Matches:     []internal.MatchResult{},
		GeneratedAt: now,
	}
	if cached, err := cache.LoadMatches(identity.UserID); err == nil {
		report.Matches = cached.Matches
		report.MatchesUpdatedAt = cached.UpdatedAt
	}
	if cached, err := cache.LoadGraph(); err == nil {
		report.GraphUsers = cached.Graph.UserCount()
		report.GraphUpdatedAt = cached.UpdatedAt
	}
	return report
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json, yaml, jsonl, md")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
}
