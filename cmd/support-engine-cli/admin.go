package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/omniretail-ai/support-engine/cmd/support-engine-cli/ui"
	"github.com/omniretail-ai/support-engine/internal/analytics"
	"github.com/omniretail-ai/support-engine/internal/lookup"
)

// newOpsCmd creates the ops subcommand.
func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the available lookup operations",
		Run: func(cmd *cobra.Command, args []string) {
			display := ui.NewUI(noColor)

			rows := make([][]string, 0, len(lookup.Ops))
			for _, op := range lookup.Ops {
				rows = append(rows, []string{string(op), lookup.OpHint(op)})
			}
			display.Table([]string{"Operación", "Valor"}, rows)
		},
	}
}

// newSchemaCmd creates the schema subcommand.
func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the analytical warehouse schema reference",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(analytics.SchemaReference)
		},
	}
}

// newWarmCmd creates the warm subcommand.
func newWarmCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Build the in-memory search snapshot",
		Long: `Scan products and customers from the operational store and build the
in-memory snapshot used by fuzzy search operations. The API server does this
on startup; this command exists to verify connectivity and measure scan time.`,
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

			bar := ui.NewProgressBar(-1, "Construyendo snapshot")

			type warmResult struct {
				snap *lookup.Snapshot
				err  error
			}
			done := make(chan warmResult, 1)
			go func() {
				snap, err := eng.Warm(ctx)
				done <- warmResult{snap: snap, err: err}
			}()

			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()

			started := time.Now()
			for {
				select {
				case res := <-done:
					bar.Finish()
					if res.err != nil {
						display.Error("Snapshot build failed: %v", res.err)
						return res.err
					}
					display.Success("Snapshot listo en %s: %d productos, %d clientes",
						time.Since(started).Round(time.Millisecond),
						len(res.snap.Products), len(res.snap.Customers))
					return nil
				case <-ticker.C:
					bar.Add(1)
				}
			}
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall command timeout")

	return cmd
}
