package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "schemadrift",
	Short: "Compare database schemas and generate sync scripts",
	Long: `Schemadrift compares two database schemas (live connections or saved
snapshot files) and generates the DDL script that brings the target
in line with the source.

Supported engines: MySQL, PostgreSQL, SQLite.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(databasesCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(versionCmd)
}

// configureLogging routes diagnostics to stderr so generated scripts on
// stdout stay clean enough to pipe into a database client.
func configureLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("schemadrift version %s\n", version)
	},
}
