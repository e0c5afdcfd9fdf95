package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/adsmcp/internal/config"
	"github.com/teemow/adsmcp/internal/logging"
)

// Global flags shared by every command.
var (
	configPath string
	envFile    string
	debugMode  bool
	logFormat  string
)

// rootCmd represents the base command for the adsmcp application
var rootCmd = &cobra.Command{
	Use:   "adsmcp",
	Short: "Google Ads API adapter for the Model Context Protocol",
	Long: `adsmcp exposes the Google Ads API to AI assistants.

It lists accessible customers and runs GAQL queries, returning every result
row as a flat JSON object keyed by the selected field paths.

It can run as:
  - An MCP (Model Context Protocol) server over stdio (default), SSE or
    streamable HTTP, optionally with a REST API
  - A CLI tool printing customers and query results as JSON`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(envFile)
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "adsmcp version %s\n" .Version}}`)

	// If no subcommand is provided, serve on stdio
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to google-ads.yaml (default: ./google-ads.yaml, then $HOME/google-ads.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before the configuration. A missing file is ignored.")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCustomersCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}

// newLogger builds the process logger. It always writes to stderr: on the
// stdio transport stdout carries the protocol, and the CLI commands print
// their results there.
func newLogger() *slog.Logger {
	logger := logging.NewLogger(os.Stderr, debugMode, logFormat)
	slog.SetDefault(logger)
	return logger
}
