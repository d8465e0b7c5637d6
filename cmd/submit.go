package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/openup-cli/internal"
	"github.com/iksnae/openup-cli/internal/session"
	"github.com/spf13/cobra"
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit [transcript|-]",
	Short: "Share a session transcript",
	Long: `Share a free-text session transcript with the matching backend.

The transcript is taken from the arguments, or from standard input when the
only argument is "-". Mentees receive refreshed mentor recommendations once the
session has been ingested.`,
	Example: `  openup submit "I want to get better at system design interviews"
  cat notes.txt | openup submit -`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, err := readTranscript(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		ctrl, err := a.signedIn(cmd.Context())
		if err != nil {
			return err
		}

		ctrl.SetDraft(transcript)
		submit := ctrl.Submit()
		if submit == nil {
			return internal.ErrEmptyTranscript
		}

		err = internal.ShowProgress(cmd.Context(), "Syncing to digital twin...", func() error {
			ctrl.Drive(submit)
			// the draft is only cleared once the session is ingested
			if st := ctrl.State(); st.Draft != "" {
				return st.StatusErr
			}
			return nil
		})
		if err != nil {
			return err
		}

		st := ctrl.State()
		out := cmd.OutOrStdout()
		if st.StatusErr != nil {
			// ingested, but the follow-up matches fetch failed
			fmt.Fprintln(out, successStyle.Render("✅ "+session.StatusIngested))
			internal.PrintWarning(cmd.ErrOrStderr(), st.Status)
			return nil
		}
		fmt.Fprintln(out, successStyle.Render("✅ "+st.Status))
		if st.Identity.IsMentee() {
			fmt.Fprintln(out)
			fmt.Fprintln(out, sectionStyle.Render("Recommended Mentors"))
			printMatches(out, st.Matches)
		}
		return nil
	},
}

func readTranscript(in io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read transcript: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func init() {
	rootCmd.AddCommand(submitCmd)
}
