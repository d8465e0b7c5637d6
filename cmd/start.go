package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/openup-cli/internal"
	"github.com/iksnae/openup-cli/internal/session"
	"github.com/iksnae/openup-cli/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var startNoAltScreen bool

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Open the interactive client",
	Long: `Open the interactive client.

With a saved identity the dashboard opens directly; otherwise the welcome
screen leads through onboarding. Logs are written to <state-dir>/openup.log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

func runInteractive(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	if err := internal.SetLogOutput(a.cfg.Paths().LogPath); err != nil {
		internal.LogWarn("Logging to stderr: %v", err)
	} else {
		defer internal.ResetLogOutput()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ctrl := a.controller(ctx)
	bootCmd := ctrl.Boot()
	session.PreloadFromCache(ctrl, a.cache)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if !startNoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(ui.New(ctrl, bootCmd), opts...).Run(); err != nil {
		return fmt.Errorf("interactive client failed: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVar(&startNoAltScreen, "inline", false, "Render inline instead of using the alternate screen")
}
