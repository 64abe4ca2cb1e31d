// Package config provides YAML configuration parsing for faqwidget.
//
// This package enables running the preview gallery and one-shot renders
// from a configuration file, as an alternative to the programmatic SDK
// approach.
//
// Example configuration:
//
//	title: FAQ preview
//	port: 8080
//	api_base: ${FAQ_API:-http://localhost:8000}
//	retry:
//	  attempts: 3
//	  timeout: 8s
//	  delay: 2s
//	refresh_interval: 5m
//
//	widgets:
//	  - name: pricing
//	    url: https://example.com/pricing
//	    heading: Pricing questions
//	    style: {fontFamily: Georgia, headerBgColor: "#222"}
//	  - name: support
//	    inline_data_file: faqs/support.json
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the gallery title. Defaults to "FAQ Widget Gallery" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// APIBase is the FAQ service base URL shared by all widgets.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	APIBase string `yaml:"api_base"`

	// Retry tunes the request retry loop for every widget.
	Retry RetryConfig `yaml:"retry"`

	// RefreshInterval re-mounts every widget periodically while the
	// gallery runs. Unset disables periodic refresh.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// Widgets defines the widgets to mount.
	Widgets []WidgetConfig `yaml:"widgets"`

	// dir is the directory relative inline_data_file paths resolve against.
	dir string
}

// RetryConfig tunes the resolution retry loop. Zero values keep the
// widget defaults.
type RetryConfig struct {
	// Attempts is the total request budget, including the first request.
	Attempts int `yaml:"attempts"`

	// Timeout bounds each individual request.
	Timeout Duration `yaml:"timeout"`

	// Delay is the pause between attempts.
	Delay Duration `yaml:"delay"`
}

// WidgetConfig defines a single widget.
type WidgetConfig struct {
	// Name identifies the widget in the gallery and on the command line.
	Name string `yaml:"name"`

	// APIBase overrides the top-level api_base for this widget.
	APIBase string `yaml:"api_base"`

	// URL is the page whose FAQs are requested.
	URL string `yaml:"url"`

	Language string `yaml:"language"`
	Heading  string `yaml:"heading"`

	// StructuredData disables JSON-LD emission when set to "off".
	StructuredData string `yaml:"structured_data"`

	// Style is the styling payload, as a JSON string or a YAML mapping.
	Style StyleConfig `yaml:"style"`

	// RefreshInterval overrides the top-level refresh_interval.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// InlineData is an embedded FAQ list (a JSON array).
	InlineData string `yaml:"inline_data"`

	// InlineDataFile names a file holding the embedded FAQ list. Relative
	// paths resolve against the config file's directory.
	InlineDataFile string `yaml:"inline_data_file"`
}

// StyleConfig holds a raw styling payload.
//
// It supports two formats in YAML:
//
// JSON string (passed through untouched, so parse errors surface when the
// widget mounts):
//
//	style: '{"fontFamily": "Georgia"}'
//
// Mapping (re-encoded as JSON):
//
//	style:
//	  fontFamily: Georgia
//	  headerBgColor: "#222"
type StyleConfig struct {
	Raw string
}

// UnmarshalYAML implements yaml.Unmarshaler for StyleConfig.
func (s *StyleConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&s.Raw)
	case yaml.MappingNode:
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return err
		}
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode style: %w", err)
		}
		s.Raw = string(data)
		return nil
	default:
		return fmt.Errorf("style must be a string or object, got %v", node.Kind)
	}
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return submatches[3]
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Relative inline_data_file paths resolve against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in api_base, url and
// inline_data_file values. Port defaults to 8080.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Widget returns the named widget configuration.
func (c *Config) Widget(name string) (WidgetConfig, bool) {
	for _, w := range c.Widgets {
		if w.Name == name {
			return w, true
		}
	}
	return WidgetConfig{}, false
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	var err error
	if c.APIBase, err = expandURL(c.APIBase); err != nil {
		return fmt.Errorf("api_base: %w", err)
	}

	if c.Retry.Attempts < 0 {
		return fmt.Errorf("retry.attempts cannot be negative, got %d", c.Retry.Attempts)
	}
	if c.Retry.Timeout.Duration() < 0 {
		return fmt.Errorf("retry.timeout cannot be negative, got %s", c.Retry.Timeout.Duration())
	}
	if c.Retry.Delay.Duration() < 0 {
		return fmt.Errorf("retry.delay cannot be negative, got %s", c.Retry.Delay.Duration())
	}

	if err := validateRefreshInterval(c.RefreshInterval); err != nil {
		return err
	}

	if len(c.Widgets) == 0 {
		return errors.New("at least one widget must be defined")
	}

	seen := make(map[string]struct{}, len(c.Widgets))
	for i := range c.Widgets {
		w := &c.Widgets[i]

		w.Name = strings.TrimSpace(w.Name)
		if w.Name == "" {
			return fmt.Errorf("widgets[%d]: name is required", i)
		}
		if _, dup := seen[w.Name]; dup {
			return fmt.Errorf("widgets[%d] (%s): duplicate widget name", i, w.Name)
		}
		seen[w.Name] = struct{}{}

		if w.APIBase, err = expandURL(w.APIBase); err != nil {
			return fmt.Errorf("widgets[%d] (%s): api_base: %w", i, w.Name, err)
		}
		if w.URL, err = expandURL(w.URL); err != nil {
			return fmt.Errorf("widgets[%d] (%s): url: %w", i, w.Name, err)
		}
		if w.InlineDataFile, err = expandEnvVars(w.InlineDataFile); err != nil {
			return fmt.Errorf("widgets[%d] (%s): inline_data_file: %w", i, w.Name, err)
		}

		if err := validateRefreshInterval(w.RefreshInterval); err != nil {
			return fmt.Errorf("widgets[%d] (%s): %w", i, w.Name, err)
		}

		if w.InlineData != "" && w.InlineDataFile != "" {
			return fmt.Errorf("widgets[%d] (%s): inline_data and inline_data_file are mutually exclusive", i, w.Name)
		}
		if w.URL == "" && w.InlineData == "" && w.InlineDataFile == "" {
			return fmt.Errorf("widgets[%d] (%s): url, inline_data or inline_data_file is required", i, w.Name)
		}
	}

	return nil
}

// Bounds for refresh_interval when set.
const (
	minRefreshInterval = time.Second
	maxRefreshInterval = 24 * time.Hour
)

func validateRefreshInterval(d Duration) error {
	if d == 0 {
		return nil
	}
	if d.Duration() < minRefreshInterval || d.Duration() > maxRefreshInterval {
		return fmt.Errorf("refresh_interval must be between %s and %s, got %s",
			minRefreshInterval, maxRefreshInterval, d.Duration())
	}
	return nil
}

// expandURL expands environment variables in raw and checks it is an
// absolute http(s) URL. Empty input is allowed.
func expandURL(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	expanded, err := expandEnvVars(raw)
	if err != nil {
		return "", err
	}

	parsed, err := url.Parse(expanded)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme == "" {
		return "", errors.New("url must have a scheme (http:// or https://)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}
	return expanded, nil
}
