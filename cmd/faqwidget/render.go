package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jclee2044/faqwidget"
	"github.com/jclee2044/faqwidget/config"
	"github.com/spf13/cobra"
)

// Output formats accepted by render --format.
const (
	formatHTML     = "html"
	formatFragment = "fragment"
	formatJSONLD   = "jsonld"
	formatMarkdown = "markdown"
)

func init() {
	rootCmd.AddCommand(newRenderCmd())
}

// newRenderCmd builds the render command. A fresh command per call keeps
// flag state from leaking between executions.
func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one widget to stdout",
		Long: `Mount a single widget, wait for it to settle and print the result.

Attributes come from, in increasing precedence:
  - a widget in a config file (--config with --widget)
  - the first <faq-widget> element of an HTML page (--host), which is
    also used as the surrounding document
  - individual flags (--url, --heading, ...)

Formats:
  html      the whole host document, structured data included
  fragment  the widget's isolated subtree only
  jsonld    the published FAQPage structured data
  markdown  the displayed FAQs as Markdown

Example:
  faqwidget render --url https://example.com/pricing
  faqwidget render -c faqwidget.yaml -w pricing --format jsonld
  faqwidget render --host page.html --format fragment`,
		Args:         cobra.NoArgs,
		RunE:         runRender,
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.StringP("config", "c", "", "path to config file")
	f.StringP("widget", "w", "", "widget name in the config file")
	f.String("host", "", "HTML page holding a <faq-widget> element")
	f.StringP("format", "f", formatHTML, "output format: html, fragment, jsonld or markdown")
	f.String("api-base", "", "FAQ service base URL")
	f.String("url", "", "page whose FAQs are requested")
	f.String("language", "", "language passed to the FAQ service")
	f.String("heading", "", "heading shown above the FAQs")
	f.String("structured-data", "", `set to "off" to disable structured data`)
	f.String("style", "", "styling payload as a JSON object")
	f.String("inline-file", "", "file holding an embedded FAQ list (JSON array)")
	f.Int("attempts", 0, "request budget, including the first request")
	f.Duration("timeout", 0, "per-request timeout")
	f.Duration("delay", 0, "pause between attempts")
	f.BoolP("verbose", "v", false, "log debug output")

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()

	format, _ := f.GetString("format")
	switch format {
	case formatHTML, formatFragment, formatJSONLD, formatMarkdown:
	default:
		return fmt.Errorf("unknown format %q (expected html, fragment, jsonld or markdown)", format)
	}

	level := slog.LevelWarn
	if verbose, _ := f.GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	attrs, opts, err := renderInputs(cmd)
	if err != nil {
		return err
	}
	opts = append(opts, faqwidget.WithWidgetName("render"), faqwidget.WithWidgetLogger(newLogger(level)))

	w, err := faqwidget.NewWidget(opts...)
	if err != nil {
		return fmt.Errorf("failed to create widget: %w", err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mountErr := w.Mount(ctx, attrs)
	if mountErr != nil && ctx.Err() != nil {
		return fmt.Errorf("render interrupted: %w", mountErr)
	}

	out := cmd.OutOrStdout()
	switch format {
	case formatHTML:
		doc, err := w.HTML()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, doc)
	case formatFragment:
		frag, err := w.ShadowHTML()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, frag)
	case formatJSONLD:
		data := w.StructuredData()
		if data == nil && mountErr == nil {
			return errors.New("no structured data published")
		}
		if data != nil {
			fmt.Fprintln(out, string(data))
		}
	case formatMarkdown:
		if mountErr == nil {
			md, err := w.Markdown()
			if err != nil {
				return err
			}
			fmt.Fprint(out, md)
		}
	}

	if mountErr != nil {
		return fmt.Errorf("widget shows an error: %w", mountErr)
	}
	return nil
}

// renderInputs resolves the widget attributes and options from the config
// file, the host page and the flags.
func renderInputs(cmd *cobra.Command) (faqwidget.Attributes, []faqwidget.WidgetOption, error) {
	f := cmd.Flags()
	var (
		attrs faqwidget.Attributes
		opts  []faqwidget.WidgetOption
	)

	configFile, _ := f.GetString("config")
	widgetName, _ := f.GetString("widget")
	switch {
	case configFile != "":
		cfg, err := config.Load(configFile)
		if err != nil {
			return attrs, nil, fmt.Errorf("failed to load config: %w", err)
		}
		if widgetName == "" {
			return attrs, nil, errors.New("--widget is required with --config")
		}
		wc, ok := cfg.Widget(widgetName)
		if !ok {
			return attrs, nil, fmt.Errorf("widget %q not found in config", widgetName)
		}
		if attrs, err = config.BuildAttributes(cfg, wc); err != nil {
			return attrs, nil, err
		}
		opts = append(opts, config.WidgetOptions(cfg)...)
	case widgetName != "":
		return attrs, nil, errors.New("--widget requires --config")
	}

	if hostFile, _ := f.GetString("host"); hostFile != "" {
		data, err := os.ReadFile(hostFile)
		if err != nil {
			return attrs, nil, fmt.Errorf("failed to read host page: %w", err)
		}
		hostAttrs, err := faqwidget.HostAttributes(string(data))
		if err != nil {
			return attrs, nil, err
		}
		attrs = overlay(attrs, hostAttrs)
		opts = append(opts, faqwidget.WithHostDocument(string(data)))
	}

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"api-base", &attrs.APIBase},
		{"url", &attrs.URL},
		{"language", &attrs.Language},
		{"heading", &attrs.Heading},
		{"structured-data", &attrs.StructuredData},
		{"style", &attrs.Config},
	}
	for _, sf := range stringFlags {
		if f.Changed(sf.name) {
			*sf.dst, _ = f.GetString(sf.name)
		}
	}

	if inlineFile, _ := f.GetString("inline-file"); inlineFile != "" {
		data, err := os.ReadFile(inlineFile)
		if err != nil {
			return attrs, nil, fmt.Errorf("failed to read inline file: %w", err)
		}
		attrs.InlineData = string(data)
	}

	if f.Changed("attempts") {
		n, _ := f.GetInt("attempts")
		opts = append(opts, faqwidget.WithMaxAttempts(n))
	}
	durationFlags := []struct {
		name string
		opt  func(time.Duration) faqwidget.WidgetOption
	}{
		{"timeout", faqwidget.WithRequestTimeout},
		{"delay", faqwidget.WithRetryDelay},
	}
	for _, df := range durationFlags {
		if f.Changed(df.name) {
			d, _ := f.GetDuration(df.name)
			opts = append(opts, df.opt(d))
		}
	}

	return attrs, opts, nil
}

// overlay copies the non-empty fields of top over base.
func overlay(base, top faqwidget.Attributes) faqwidget.Attributes {
	fields := []struct{ dst, src *string }{
		{&base.APIBase, &top.APIBase},
		{&base.URL, &top.URL},
		{&base.Language, &top.Language},
		{&base.Heading, &top.Heading},
		{&base.StructuredData, &top.StructuredData},
		{&base.Config, &top.Config},
		{&base.InlineData, &top.InlineData},
	}
	for _, fld := range fields {
		if *fld.src != "" {
			*fld.dst = *fld.src
		}
	}
	return base
}
