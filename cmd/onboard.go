package cmd

import (
	"fmt"

	"github.com/iksnae/openup-cli/internal"
	"github.com/spf13/cobra"
)

var (
	onboardRole    string
	onboardName    string
	onboardContext string
)

// onboardCmd represents the onboard command
var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Register as a mentee or a mentor",
	Long: `Register as a mentee or a mentor without opening the interactive client.

A user ID is derived from your display name and saved to the state directory,
so later commands and the interactive client pick it up automatically.`,
	Example: `  openup onboard --role mentee --name "Alex Chen" --context "Grow into a staff engineer"
  openup onboard --role mentor --name "Sam Ortiz" --context "Ten years of distributed systems"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := internal.ParseRole(onboardRole)
		if err != nil {
			return err
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		ctrl := a.controller(cmd.Context())
		_ = ctrl.Boot()
		if identity := ctrl.Identity(); identity != nil {
			return fmt.Errorf("already signed in as %s; run `openup logout` first", identity.UserID)
		}

		bootGraph, err := ctrl.Register(internal.Profile{
			Role:    role,
			Name:    onboardName,
			Context: onboardContext,
		})
		if err != nil {
			return err
		}
		ctrl.Drive(bootGraph)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, successStyle.Render("✅ Registered"))
		printIdentity(out, ctrl.Identity())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onboardCmd)
	onboardCmd.Flags().StringVar(&onboardRole, "role", "", "mentee or mentor (required)")
	onboardCmd.Flags().StringVar(&onboardName, "name", "", "Display name (required)")
	onboardCmd.Flags().StringVar(&onboardContext, "context", "", "Goals (mentee) or expertise (mentor)")
	_ = onboardCmd.MarkFlagRequired("role")
	_ = onboardCmd.MarkFlagRequired("name")
}
