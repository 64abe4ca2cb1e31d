package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jclee2044/faqwidget"
)

func TestBuildWidgets(t *testing.T) {
	cfg := &Config{
		APIBase: "https://faq.example.com",
		Widgets: []WidgetConfig{
			{
				Name:           "pricing",
				URL:            "https://example.com/pricing",
				Language:       "de",
				Heading:        "Fragen",
				StructuredData: "off",
				Style:          StyleConfig{Raw: `{"fontFamily":"Georgia"}`},
			},
			{
				Name:       "support",
				APIBase:    "https://other.example.com",
				InlineData: `[{"question":"Q","answer":"A"}]`,
			},
		},
	}

	widgets, err := BuildWidgets(cfg)
	if err != nil {
		t.Fatalf("BuildWidgets() error = %v", err)
	}
	if len(widgets) != 2 {
		t.Fatalf("len(widgets) = %d, want 2", len(widgets))
	}

	want := faqwidget.NamedWidget{
		Name: "pricing",
		Attributes: faqwidget.Attributes{
			APIBase:        "https://faq.example.com",
			URL:            "https://example.com/pricing",
			Language:       "de",
			Heading:        "Fragen",
			StructuredData: "off",
			Config:         `{"fontFamily":"Georgia"}`,
		},
	}
	if widgets[0] != want {
		t.Errorf("widgets[0] = %+v, want %+v", widgets[0], want)
	}

	if widgets[1].Attributes.APIBase != "https://other.example.com" {
		t.Errorf("widget api_base override not applied: %q", widgets[1].Attributes.APIBase)
	}
	if widgets[1].Attributes.InlineData == "" {
		t.Error("inline_data not carried")
	}
}

func TestBuildAttributes_InlineDataFile(t *testing.T) {
	dir := t.TempDir()
	payload := `[{"question":"From file","answer":"Yes"}]`
	if err := os.WriteFile(filepath.Join(dir, "faqs.json"), []byte(payload), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := &Config{dir: dir}
	attrs, err := BuildAttributes(cfg, WidgetConfig{Name: "a", InlineDataFile: "faqs.json"})
	if err != nil {
		t.Fatalf("BuildAttributes() error = %v", err)
	}
	if attrs.InlineData != payload {
		t.Errorf("InlineData = %q, want %q", attrs.InlineData, payload)
	}

	abs := filepath.Join(dir, "faqs.json")
	attrs, err = BuildAttributes(&Config{dir: "/elsewhere"}, WidgetConfig{Name: "a", InlineDataFile: abs})
	if err != nil {
		t.Fatalf("BuildAttributes(absolute) error = %v", err)
	}
	if attrs.InlineData != payload {
		t.Errorf("absolute InlineData = %q", attrs.InlineData)
	}
}

func TestBuildAttributes_InlineDataFileMissing(t *testing.T) {
	_, err := BuildAttributes(&Config{dir: t.TempDir()}, WidgetConfig{Name: "a", InlineDataFile: "missing.json"})
	if err == nil || !strings.Contains(err.Error(), "failed to read inline_data_file") {
		t.Errorf("BuildAttributes() error = %v", err)
	}
}

func TestWidgetOptions(t *testing.T) {
	if got := WidgetOptions(&Config{}); len(got) != 0 {
		t.Errorf("WidgetOptions(empty) = %d options, want 0", len(got))
	}

	cfg := &Config{Retry: RetryConfig{
		Attempts: 4,
		Timeout:  Duration(2 * time.Second),
		Delay:    Duration(10 * time.Millisecond),
	}}
	opts := WidgetOptions(cfg)
	if len(opts) != 3 {
		t.Fatalf("WidgetOptions() = %d options, want 3", len(opts))
	}

	w, err := faqwidget.NewWidget(opts...)
	if err != nil {
		t.Fatalf("NewWidget() error = %v", err)
	}
	defer w.Close()
	if got := w.Snapshot().MaxAttempts; got != 4 {
		t.Errorf("MaxAttempts = %d, want 4", got)
	}
}

func TestGalleryOptions(t *testing.T) {
	cfg, err := Parse([]byte(`
title: Preview
port: 9191
widgets:
  - name: a
    inline_data: '[{"question":"Q","answer":"A"}]'
  - name: b
    url: https://example.com
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	opts, err := GalleryOptions(cfg)
	if err != nil {
		t.Fatalf("GalleryOptions() error = %v", err)
	}

	g, err := faqwidget.NewGallery(opts...)
	if err != nil {
		t.Fatalf("NewGallery() error = %v", err)
	}
	if g.Port() != 9191 {
		t.Errorf("Port() = %d, want 9191", g.Port())
	}
	if names := g.Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v", names)
	}
}

func TestGalleryOptions_RefreshInterval(t *testing.T) {
	cfg, err := Parse([]byte(`
refresh_interval: 10m
widgets:
  - name: a
    inline_data: '[{"question":"Q","answer":"A"}]'
  - name: b
    url: https://example.com
    refresh_interval: 30s
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	opts, err := GalleryOptions(cfg)
	if err != nil {
		t.Fatalf("GalleryOptions() error = %v", err)
	}
	g, err := faqwidget.NewGallery(opts...)
	if err != nil {
		t.Fatalf("NewGallery() error = %v", err)
	}

	if got := g.RefreshInterval("a"); got != 10*time.Minute {
		t.Errorf("RefreshInterval(a) = %v, want 10m", got)
	}
	if got := g.RefreshInterval("b"); got != 30*time.Second {
		t.Errorf("RefreshInterval(b) = %v, want 30s", got)
	}
}
