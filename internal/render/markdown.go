package render

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"github.com/jclee2044/faqwidget/internal/faq"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// Markdown converts the exported form of a collection to Markdown.
func Markdown(title string, items []faq.Item) (string, error) {
	fragment, err := RenderString(Export(title, items))
	if err != nil {
		return "", err
	}
	md, err := mdConverter.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("failed to convert FAQs to markdown: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}
