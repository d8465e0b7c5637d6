package cmd

import (
	"fmt"

	"github.com/iksnae/openup-cli/internal"
	"github.com/spf13/cobra"
)

var logoutClearCache bool

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved identity",
	Long: `Forget the saved identity and its cached matches.

The next launch shows the welcome screen. Use --clear-cache to also drop the
cached knowledge graph.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		ctrl, err := a.signedIn(cmd.Context())
		if err != nil {
			return err
		}
		userID := ctrl.Identity().UserID
		ctrl.Logout()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Logged out %s", userID)))

		if logoutClearCache {
			if err := a.cache.ClearCache(); err != nil {
				internal.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("Failed to clear cache: %v", err))
			} else {
				internal.PrintInfo(out, "Cache cleared")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&logoutClearCache, "clear-cache", false, "Also clear every cached result")
}
