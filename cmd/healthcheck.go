package cmd

import (
	"fmt"

	"github.com/iksnae/openup-cli/internal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	healthcheckDetails bool
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the matching backend and local state are reachable",
	Long: `Check the health of the OpenUp client by verifying:
  • Configuration and state directory
  • Saved identity
  • Backend health endpoint
  • Knowledge graph availability

This command is useful for debugging connectivity before opening the client.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 OpenUp Health Check"))
		fmt.Fprintln(out)

		var (
			a        *app
			identity *internal.Identity
			signedIn bool
			health   internal.HealthStatus
			graph    internal.GraphSnapshot
			graphErr error
		)
		defer func() {
			if a != nil {
				_ = a.close()
			}
		}()

		steps := []internal.ProgressStep{
			{
				Message: "Loading configuration",
				Fn: func() error {
					var err error
					a, err = loadApp()
					return err
				},
			},
			{
				Message: "Checking saved identity",
				Fn: func() error {
					identity, signedIn = a.store.Load()
					return nil
				},
			},
			{
				Message: "Contacting backend",
				Fn: func() error {
					g, ctx := errgroup.WithContext(cmd.Context())
					g.Go(func() error {
						var err error
						health, err = a.client.HealthCheck(ctx)
						return err
					})
					g.Go(func() error {
						// graph failures are reported but do not fail the check
						graph, graphErr = a.client.GetGraph(ctx)
						return nil
					})
					return g.Wait()
				},
			},
		}
		stepErr := internal.ShowProgressWithSteps(cmd.Context(), steps)

		// Step 1: Configuration
		if a == nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load configuration:"), stepErr)
			return stepErr
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckDetails {
			fmt.Fprintf(out, "   Backend: %s\n", a.cfg.APIURL)
			fmt.Fprintf(out, "   State dir: %s\n", a.cfg.StateDir)
			fmt.Fprintf(out, "   Identity store: %s\n", a.cfg.StoreBackend)
		}

		// Step 2: Identity
		if signedIn {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Signed in as %s (%s)", identity.UserID, identity.Role)))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No saved identity"))
			fmt.Fprintln(out, "   Run `openup onboard` or open the interactive client to register")
		}

		// Step 3: Backend
		if stepErr != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable:"), stepErr)
			fmt.Fprintln(out)
			fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: %w", stepErr)
		}
		if health.Healthy() {
			fmt.Fprintln(out, successStyle.Render("✅ Backend healthy"))
		} else {
			fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  Backend reports status %v", health["status"])))
		}
		if healthcheckDetails {
			for _, key := range sortedKeys(health) {
				fmt.Fprintf(out, "   %s: %v\n", key, health[key])
			}
		}
		if graphErr != nil {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Graph unavailable:"), graphErr)
		} else {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Graph reachable (%d users)", graph.UserCount())))
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if !health.Healthy() {
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: backend status %v", health["status"])
		}
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckDetails, "details", false, "Show detailed diagnostic information")
}
