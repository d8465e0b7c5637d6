package cmd

import (
	"fmt"

	"github.com/iksnae/openup-cli/internal"
	"github.com/iksnae/openup-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	matchesTopK   int
	matchesCached bool
)

// matchesCmd represents the matches command
var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Fetch ranked mentor recommendations",
	Long: `Fetch ranked mentor recommendations for the saved identity.

With --cached the last successfully fetched list is shown without contacting
the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		var opts []session.Option
		if matchesTopK > 0 {
			opts = append(opts, session.WithTopK(matchesTopK))
		}
		ctrl, err := a.signedIn(cmd.Context(), opts...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		userID := ctrl.Identity().UserID

		if matchesCached {
			cached, err := a.cache.LoadMatches(userID)
			if err != nil {
				return fmt.Errorf("no cached matches for %s: %w", userID, err)
			}
			fmt.Fprintln(out, infoStyle.Render("Cached "+internal.HumanizeAge(cached.UpdatedAt)))
			printMatches(out, cached.Matches)
			return nil
		}

		fetch := ctrl.FetchMatches()
		err = internal.ShowProgress(cmd.Context(), session.StatusFindingMatch, func() error {
			ctrl.Drive(fetch)
			return ctrl.State().StatusErr
		})
		if err != nil {
			return err
		}
		printMatches(out, ctrl.State().Matches)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)
	matchesCmd.Flags().IntVar(&matchesTopK, "top-k", 0, "Number of matches to request (default from config)")
	matchesCmd.Flags().BoolVar(&matchesCached, "cached", false, "Show the last fetched matches without contacting the backend")
}
