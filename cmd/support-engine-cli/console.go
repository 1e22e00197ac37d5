package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/omniretail-ai/support-engine/cmd/support-engine-cli/ui"
	"github.com/omniretail-ai/support-engine/internal/analytics"
	"github.com/omniretail-ai/support-engine/internal/lookup"
)

// newConsoleCmd creates the console subcommand.
func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open an interactive support console",
		Long: `Open an interactive console that routes each line to the right engine:

  SELECT ...          analytical report against the warehouse
  OPERACION:valor     fast lookup against the operational store

Console commands: /ops, /schema, /audit, /exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			display := ui.NewUI(noColor)

			ctx := cmd.Context()
			eng, err := newEngine(ctx)
			if err != nil {
				display.Error("Engine initialization failed: %v", err)
				return err
			}
			defer eng.Close()

			display.Info("Consola de soporte. Escribe /ops para las operaciones, /exit para salir.")

			prompt := color.New(color.FgGreen, color.Bold)
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

			for {
				if noColor {
					fmt.Print("soporte> ")
				} else {
					prompt.Print("soporte> ")
				}

				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				switch {
				case line == "/exit" || line == "/quit":
					display.Info("Hasta luego.")
					return nil

				case line == "/ops":
					for _, op := range lookup.Ops {
						fmt.Printf("  %-22s %s\n", string(op)+":", lookup.OpHint(op))
					}

				case line == "/schema":
					fmt.Println(analytics.SchemaReference)

				case line == "/audit":
					events := eng.Audit().Recent(10)
					if len(events) == 0 {
						display.Info("Sin eventos registrados.")
						continue
					}
					for _, ev := range events {
						fmt.Printf("  %s  %-6s  %-13s  %4dms  %s\n",
							ev.OccurredAt.Format("15:04:05"), ev.Kind, ev.Outcome, ev.LatencyMs, ev.Subject)
					}

				case strings.HasPrefix(line, "/"):
					display.Warning("Comando desconocido: %s", line)

				case strings.HasPrefix(strings.ToLower(line), "select"):
					spin := ui.NewSpinner("Ejecutando consulta analítica...")
					spin.Start()
					result := eng.Report(ctx, line)
					spin.Stop()
					fmt.Println(result)

				default:
					fmt.Println(eng.Lookup(ctx, line))
				}
			}
		},
	}
}
