package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/openup-cli/internal"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	apiURL       string
	stateDir     string
	storeBackend string
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "openup",
	Short: "Share mentorship sessions and get ranked mentor matches",
	Long: `A terminal client for the OpenUp.AI mentorship matching service.

Register as a mentee or a mentor, share free-text session transcripts to
build your digital twin, and receive ranked mentor recommendations.

Run without a subcommand to open the interactive client.

Quick Start:
  openup                                    # Interactive client
  openup onboard --role mentee --name "Alex Chen" --context "grow as an engineer"
  openup submit "I want to learn systems design"
  openup matches                            # Refresh recommendations

The backend origin defaults to http://localhost:8000 and can be changed with
--api-url, OPENUP_API_URL or api_url in <state-dir>/config.yaml.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Matching backend origin (default http://localhost:8000)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory holding the saved identity, cache and logs")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Identity store backend: file, sqlite or memory")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
