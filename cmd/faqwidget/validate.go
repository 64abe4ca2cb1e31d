package main

import (
	"fmt"

	"github.com/jclee2044/faqwidget"
	"github.com/jclee2044/faqwidget/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a faqwidget configuration file without starting the server.

This command parses the YAML, expands environment variables, reads any
inline_data_file and validates all fields. It's useful for CI/CD
pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  faqwidget validate -c faqwidget.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	widgets, err := config.BuildWidgets(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	inline, refreshed := 0, 0
	for _, w := range widgets {
		if w.Attributes.InlineData != "" {
			inline++
		}
		if w.RefreshInterval > 0 || cfg.RefreshInterval > 0 {
			refreshed++
		}
	}

	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = faqwidget.DefaultAPIBase + " (default)"
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:     %d\n", cfg.Port)
	fmt.Printf("  API base: %s\n", apiBase)
	fmt.Printf("  Widgets:  %d remote + %d inline = %d total\n",
		len(widgets)-inline, inline, len(widgets))
	if refreshed > 0 {
		fmt.Printf("  Refresh:  %d widget(s) re-mounted periodically\n", refreshed)
	}

	return nil
}
