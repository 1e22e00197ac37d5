package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omniretail-ai/support-engine/cmd/support-engine-cli/ui"
)

// newReportCmd creates the report subcommand.
func newReportCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "report SQL",
		Short: "Run an analytical SQL report against the warehouse",
		Long: `Run a single analytical query, for example:

  support-engine-cli report "SELECT categoria, COUNT(*) FROM products GROUP BY categoria"

Only SELECT statements are accepted. Results are capped and cached briefly,
so repeating a report is cheap.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			display := ui.NewUI(noColor)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			eng, err := newEngine(ctx)
			if err != nil {
				display.Error("Engine initialization failed: %v", err)
				return err
			}
			defer eng.Close()

			sqlText := strings.Join(args, " ")

			spin := ui.NewSpinner("Ejecutando consulta analítica...")
			spin.Start()
			result := eng.Report(ctx, sqlText)
			spin.Stop()

			display.Result(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "overall command timeout")

	return cmd
}
