package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/epinet"
	"github.com/aretw0/epinet/internal/cli"
	"github.com/aretw0/epinet/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var simulateCmd = &cobra.Command{
	Use:     "simulate",
	Aliases: []string{"run"},
	Short:   "Run an epidemic to completion in-process",
	Long: `Generates a population, steps the epidemic day by day until it ends (or
--max-days pass) and prints a report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		n, _ := cmd.Flags().GetInt("n")
		maxDays, _ := cmd.Flags().GetInt("max-days")
		format, _ := cmd.Flags().GetString("format")
		plain, _ := cmd.Flags().GetBool("plain")
		verbose, _ := cmd.Flags().GetBool("verbose")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := cli.NewApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		out := cmd.OutOrStdout()
		if f, ok := out.(*os.File); ok && !cmd.Flags().Changed("plain") {
			plain = !term.IsTerminal(int(f.Fd()))
		}
		if format == "markdown" && !plain {
			tui.PrintBanner(out)
		}

		var onDay func(epinet.Status)
		if verbose {
			onDay = func(s epinet.Status) {
				fmt.Fprintf(cmd.ErrOrStderr(), "day %4d  %s\n", s.Day, tui.FormatCounts(s.Counts))
			}
		}

		res, err := cli.Simulate(ctx, app.Service, n, maxDays, onDay)
		if err != nil {
			return err
		}

		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Report)
		case "markdown":
			render := tui.NewRenderer(plain)
			rendered, err := render(res.Report.Markdown())
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		default:
			return fmt.Errorf("unknown format: %s. Supported: markdown, json", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Int("n", 1000, "Number of agents")
	simulateCmd.Flags().Int("max-days", 365, "Stop after this many days even if the epidemic continues")
	simulateCmd.Flags().String("format", "markdown", "Output format: markdown or json")
	simulateCmd.Flags().Bool("plain", false, "Disable colours and markdown styling (default when stdout is not a terminal)")
	simulateCmd.Flags().BoolP("verbose", "v", false, "Print the counts of every day to stderr")
}
