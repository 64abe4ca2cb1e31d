package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeValidateCmd runs the validate command with the given config path
// and returns captured stdout and any error.
func executeValidateCmd(t *testing.T, configPath string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rootCmd.SetArgs([]string{"validate", "-c", configPath})
	err := rootCmd.Execute()

	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRunValidate_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "support.json", `[{"question":"Q","answer":"A"}]`)
	configPath := writeFile(t, tmpDir, "faqwidget.yaml", `
port: 8080
widgets:
  - name: pricing
    url: https://example.com/pricing
  - name: support
    inline_data_file: support.json
`)

	output, err := executeValidateCmd(t, configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Port:     8080",
		"API base: http://localhost:8000 (default)",
		"1 remote + 1 inline = 2 total",
	}
	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunValidate_RefreshSummary(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "faqwidget.yaml", `
widgets:
  - name: pricing
    url: https://example.com/pricing
    refresh_interval: 5m
  - name: support
    url: https://example.com/support
`)

	output, err := executeValidateCmd(t, configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}
	if !strings.Contains(output, "Refresh:  1 widget(s) re-mounted periodically") {
		t.Errorf("output missing refresh summary\nGot: %s", output)
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "invalid.yaml", `
widgets:
  - name: ""
    url: https://example.com
`)

	_, err := executeValidateCmd(t, configPath)
	if err == nil {
		t.Fatal("validate command expected error for invalid config, got nil")
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("error should mention 'name is required', got: %v", err)
	}
}

func TestRunValidate_MissingInlineFile(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "faqwidget.yaml", `
widgets:
  - name: support
    inline_data_file: missing.json
`)

	_, err := executeValidateCmd(t, configPath)
	if err == nil || !strings.Contains(err.Error(), "inline_data_file") {
		t.Errorf("validate command error = %v, want inline_data_file error", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeValidateCmd(t, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("validate command expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error should mention 'failed to read', got: %v", err)
	}
}
