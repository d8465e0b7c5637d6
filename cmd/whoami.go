package cmd

import (
	"fmt"

	"github.com/iksnae/openup-cli/internal"
	"github.com/spf13/cobra"
)

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the saved identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		identity, ok := a.store.Load()
		if !ok {
			return errNotSignedIn
		}
		out := cmd.OutOrStdout()
		printIdentity(out, identity)

		if !identity.IsMentee() {
			return nil
		}
		fmt.Fprintln(out)
		if cached, err := a.cache.LoadMatches(identity.UserID); err == nil {
			internal.PrintInfo(out, fmt.Sprintf("%d cached matches, updated %s", len(cached.Matches), internal.HumanizeAge(cached.UpdatedAt)))
		} else {
			internal.PrintInfo(out, "No cached matches; run `openup matches` to fetch them")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
