package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omniretail-ai/support-engine/cmd/support-engine-cli/ui"
)

// newLookupCmd creates the lookup subcommand.
func newLookupCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "lookup OPERACION:valor",
		Short: "Run a fast lookup against the operational store",
		Long: `Run a single fast lookup, for example:

  support-engine-cli lookup "PRODUCTO:monitor gamer"
  support-engine-cli lookup PEDIDOS:CUST-0042

Use the ops subcommand to list the available operation codes.`,
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

			// Allow the operation to be passed unquoted in several args
			operation := strings.Join(args, " ")
			display.Result(eng.Lookup(ctx, operation))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall command timeout")

	return cmd
}
