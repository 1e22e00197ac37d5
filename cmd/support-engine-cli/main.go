// Package main provides the support engine CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/omniretail-ai/support-engine/internal/config"
	"github.com/omniretail-ai/support-engine/internal/observability"
	"github.com/omniretail-ai/support-engine/pkg/engine"
)

var (
	// Global flags
	cfgFile string
	noColor bool
	verbose bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "support-engine-cli",
	Short: "Support engine CLI for customer support queries and administration",
	Long: `Support engine CLI provides commands for running support queries locally.

Use this tool to:
- Run fast lookups against the operational store (OPERACION:valor)
- Run analytical SQL reports against the warehouse
- Open an interactive console that routes both query kinds
- Inspect available operations, the analytical schema, and the audit trail
- Warm the in-memory search snapshot`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env if present; real env vars win
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Observability.LogLevel
		if !verbose {
			// Keep query output readable; logs go quiet unless asked for
			level = "error"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      "console",
			ServiceName: "support-engine-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newConsoleCmd())
	rootCmd.AddCommand(newOpsCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newWarmCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newEngine builds the query engine from the loaded configuration.
func newEngine(ctx context.Context) (*engine.Engine, error) {
	return engine.New(ctx, cfg, logger)
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("support-engine-cli v0.3.0")
		},
	}
}
