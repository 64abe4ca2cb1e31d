// Package main is the entry point for the faqwidget CLI.
//
// faqwidget can be used as a library (SDK) or as a standalone binary with
// YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	faqwidget serve -c faqwidget.yaml              # Start the preview gallery
//	faqwidget render --url https://example.com/p   # Render one widget to stdout
//	faqwidget validate -c faqwidget.yaml           # Validate configuration
//	faqwidget version                              # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "faqwidget",
	Short: "An embeddable FAQ widget renderer and preview server",
	Long: `faqwidget resolves a page's FAQs (from an embedded data block or the
FAQ service), renders them as an accessible accordion and publishes
matching FAQPage structured data.

Quick start:
  1. Create a config file (faqwidget.yaml)
  2. Run: faqwidget serve -c faqwidget.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  api_base: http://localhost:8000
  widgets:
    - name: pricing
      url: https://example.com/pricing
      heading: Pricing questions`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newLogger creates a JSON logger on stderr for CLI use.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this faqwidget binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "faqwidget %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
