package faqwidget

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/jclee2044/faqwidget/internal/render"
)

const (
	// DefaultAPIBase is the backend used when no API base is configured.
	DefaultAPIBase = "http://localhost:8000"

	// DefaultHeading is the heading used when none is configured.
	DefaultHeading = "Frequently Asked Questions"
)

// Host element attribute names read by [HostAttributes].
const (
	AttrAPIBase        = "api-base"
	AttrURL            = "url"
	AttrLanguage       = "language"
	AttrHeading        = "heading"
	AttrStructuredData = "structured-data"
	AttrConfig         = "config"
)

// inlineDataClass marks the embedded data block next to a host element.
const inlineDataClass = "faq-data"

// Attributes are the declarative settings of one widget.
type Attributes struct {
	// APIBase is the FAQ backend base URL. Defaults to [DefaultAPIBase].
	APIBase string

	// URL is the page whose FAQs are requested. Without it, only inline
	// data can be displayed.
	URL string

	// Language is an optional target language hint.
	Language string

	// Heading is shown above the list. Defaults to [DefaultHeading].
	Heading string

	// StructuredData disables structured-data emission when set to "off".
	// Any other value, including empty, leaves it enabled.
	StructuredData string

	// Config is a JSON object of styling keys.
	Config string

	// InlineData is the raw text of an embedded JSON array of
	// {question, answer} objects.
	InlineData string
}

// StructuredDataEnabled reports whether structured data should be emitted.
func (a Attributes) StructuredDataEnabled() bool {
	return !strings.EqualFold(strings.TrimSpace(a.StructuredData), "off")
}

func (a Attributes) withDefaults() Attributes {
	if strings.TrimSpace(a.APIBase) == "" {
		a.APIBase = DefaultAPIBase
	}
	if strings.TrimSpace(a.Heading) == "" {
		a.Heading = DefaultHeading
	}
	return a
}

// HostAttributes reads widget attributes from a host document: the
// attributes of its first <faq-widget> element and, as inline data, the
// text of a <script type="application/json" class="faq-data"> that is the
// element's child or next element sibling.
func HostAttributes(document string) (Attributes, error) {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return Attributes{}, fmt.Errorf("failed to parse host document: %w", err)
	}
	host := render.Find(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == render.HostTag
	})
	if host == nil {
		return Attributes{}, fmt.Errorf("host document has no <%s> element", render.HostTag)
	}

	get := func(key string) string {
		v, _ := render.Attr(host, key)
		return v
	}
	attrs := Attributes{
		APIBase:        get(AttrAPIBase),
		URL:            get(AttrURL),
		Language:       get(AttrLanguage),
		Heading:        get(AttrHeading),
		StructuredData: get(AttrStructuredData),
		Config:         get(AttrConfig),
	}
	if data := inlineDataBlock(host); data != nil {
		attrs.InlineData = render.TextContent(data)
	}
	return attrs, nil
}

func inlineDataBlock(host *html.Node) *html.Node {
	isData := func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "script" || !render.HasClass(n, inlineDataClass) {
			return false
		}
		typ, _ := render.Attr(n, "type")
		return strings.EqualFold(typ, "application/json")
	}
	for c := host.FirstChild; c != nil; c = c.NextSibling {
		if isData(c) {
			return c
		}
	}
	for s := host.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			if isData(s) {
				return s
			}
			break
		}
	}
	return nil
}
