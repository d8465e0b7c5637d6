package cmd

import (
	"fmt"

	"github.com/iksnae/openup-cli/internal"
	"github.com/spf13/cobra"
)

var (
	graphRaw    bool
	graphCached bool
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the knowledge graph snapshot",
	Long: `Show the backend's knowledge graph: the number of users and, with --raw,
the full snapshot as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.close() }()

		var graph internal.GraphSnapshot
		age := ""
		if graphCached {
			cached, err := a.cache.LoadGraph()
			if err != nil {
				return fmt.Errorf("no cached graph: %w", err)
			}
			graph = cached.Graph
			age = internal.HumanizeAge(cached.UpdatedAt)
		} else {
			err = internal.ShowProgress(cmd.Context(), "Loading knowledge graph data...", func() error {
				var err error
				graph, err = a.client.GetGraph(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if err := a.cache.SaveGraph(graph); err != nil {
				internal.LogWarn("Failed to cache graph: %v", err)
			}
		}

		out := cmd.OutOrStdout()
		if graphRaw {
			fmt.Fprintln(out, graph.JSON())
			return nil
		}
		fmt.Fprintln(out, sectionStyle.Render("Network Statistics"))
		fmt.Fprintf(out, "Total users: %d\n", graph.UserCount())
		if age != "" {
			fmt.Fprintf(out, "Cached:      %s\n", age)
		}
		for _, id := range graph.UserIDs() {
			fmt.Fprintf(out, "  • %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().BoolVar(&graphRaw, "raw", false, "Print the raw graph JSON")
	graphCmd.Flags().BoolVar(&graphCached, "cached", false, "Show the last fetched graph without contacting the backend")
}
