package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jclee2044/faqwidget"
)

// BuildWidgets converts parsed configuration into SDK widget definitions,
// in configuration order.
func BuildWidgets(cfg *Config) ([]faqwidget.NamedWidget, error) {
	widgets := make([]faqwidget.NamedWidget, 0, len(cfg.Widgets))
	for _, wc := range cfg.Widgets {
		attrs, err := BuildAttributes(cfg, wc)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, faqwidget.NamedWidget{
			Name:            wc.Name,
			Attributes:      attrs,
			RefreshInterval: wc.RefreshInterval.Duration(),
		})
	}
	return widgets, nil
}

// BuildAttributes converts one widget configuration into the declarative
// attributes it mounts with. A widget api_base overrides the top-level one;
// inline_data_file is read here.
func BuildAttributes(cfg *Config, wc WidgetConfig) (faqwidget.Attributes, error) {
	attrs := faqwidget.Attributes{
		APIBase:        cfg.APIBase,
		URL:            wc.URL,
		Language:       wc.Language,
		Heading:        wc.Heading,
		StructuredData: wc.StructuredData,
		Config:         wc.Style.Raw,
		InlineData:     wc.InlineData,
	}
	if wc.APIBase != "" {
		attrs.APIBase = wc.APIBase
	}

	if wc.InlineDataFile != "" {
		path := wc.InlineDataFile
		if !filepath.IsAbs(path) && cfg.dir != "" {
			path = filepath.Join(cfg.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return faqwidget.Attributes{}, fmt.Errorf("widget (%s): failed to read inline_data_file: %w", wc.Name, err)
		}
		attrs.InlineData = string(data)
	}

	return attrs, nil
}

// WidgetOptions converts the retry settings into widget options. Unset
// values keep the widget defaults.
func WidgetOptions(cfg *Config) []faqwidget.WidgetOption {
	var opts []faqwidget.WidgetOption
	if cfg.Retry.Attempts != 0 {
		opts = append(opts, faqwidget.WithMaxAttempts(cfg.Retry.Attempts))
	}
	if cfg.Retry.Timeout != 0 {
		opts = append(opts, faqwidget.WithRequestTimeout(cfg.Retry.Timeout.Duration()))
	}
	if cfg.Retry.Delay != 0 {
		opts = append(opts, faqwidget.WithRetryDelay(cfg.Retry.Delay.Duration()))
	}
	return opts
}

// GalleryOptions converts the whole configuration into gallery options.
func GalleryOptions(cfg *Config) ([]faqwidget.Option, error) {
	widgets, err := BuildWidgets(cfg)
	if err != nil {
		return nil, err
	}

	opts := []faqwidget.Option{
		faqwidget.WithWidgets(widgets...),
		faqwidget.WithPort(cfg.Port),
		faqwidget.WithWidgetOptions(WidgetOptions(cfg)...),
	}
	if cfg.Title != "" {
		opts = append(opts, faqwidget.WithTitle(cfg.Title))
	}
	if cfg.RefreshInterval != 0 {
		opts = append(opts, faqwidget.WithRefreshInterval(cfg.RefreshInterval.Duration()))
	}
	return opts, nil
}
