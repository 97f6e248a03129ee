package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/epinet/internal/cli"
	"github.com/aretw0/epinet/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Generate a contact network and export it",
	Long: `Generates a contact network of --n agents and prints it as a Mermaid diagram
(graph LR) or as JSON. With --days the epidemic is stepped first and the
Mermaid nodes are coloured by health state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		n, _ := cmd.Flags().GetInt("n")
		days, _ := cmd.Flags().GetInt("days")
		format, _ := cmd.Flags().GetString("format")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		app, err := cli.NewApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		status, err := app.Service.Generate(ctx, n)
		if err != nil {
			return err
		}
		if days > 0 {
			if _, err := app.Service.Step(ctx, status.SimID, days); err != nil {
				return err
			}
		}

		g, err := app.Service.Graph(ctx, status.GraphID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		case "mermaid":
			var overlay *graph.StateOverlay
			if days > 0 {
				sim, err := app.Service.Simulation(ctx, status.SimID)
				if err != nil {
					return err
				}
				overlay = graph.OverlayOf(sim)
			}
			fmt.Fprint(out, graph.GenerateMermaid(g, overlay, limit))
			return nil
		default:
			return fmt.Errorf("unknown format: %s. Supported: mermaid, json", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Int("n", 500, "Number of agents")
	graphCmd.Flags().Int("days", 0, "Days to simulate before exporting")
	graphCmd.Flags().String("format", "mermaid", "Output format: mermaid or json")
	graphCmd.Flags().Int("limit", graph.DefaultLimit, "Maximum number of nodes in the Mermaid diagram")
}
