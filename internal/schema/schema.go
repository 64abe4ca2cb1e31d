// Package schema publishes FAQPage structured data into a host document.
package schema

import (
	"encoding/json"
	"fmt"

	"golang.org/x/net/html"

	"github.com/jclee2044/faqwidget/internal/faq"
	"github.com/jclee2044/faqwidget/internal/render"
)

// OwnerAttr marks script blocks emitted by a publisher with its owner id.
const OwnerAttr = "data-faq-widget"

// Answer is a schema.org Answer.
type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// Question is a schema.org Question.
type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

// FAQPage is a schema.org FAQPage document.
type FAQPage struct {
	Context    string     `json:"@context"`
	Type       string     `json:"@type"`
	Name       string     `json:"name,omitempty"`
	MainEntity []Question `json:"mainEntity"`
}

// Build returns the FAQPage document for items, in order.
func Build(items []faq.Item, heading string) FAQPage {
	page := FAQPage{
		Context:    "https://schema.org",
		Type:       "FAQPage",
		Name:       heading,
		MainEntity: make([]Question, 0, len(items)),
	}
	for _, it := range items {
		page.MainEntity = append(page.MainEntity, Question{
			Type:           "Question",
			Name:           it.Question,
			AcceptedAnswer: Answer{Type: "Answer", Text: it.Answer},
		})
	}
	return page
}

// Marshal encodes page as JSON. encoding/json escapes '<', '>' and '&', so
// the result is safe as raw <script> content.
func Marshal(page FAQPage) ([]byte, error) {
	return json.Marshal(page)
}

// Publisher owns at most one structured-data block in a host document.
// It is not safe for concurrent use.
type Publisher struct {
	doc     *html.Node
	owner   string
	enabled bool
	current []byte
}

// NewPublisher creates a publisher writing into doc's <head>. owner
// identifies the blocks this publisher may replace.
func NewPublisher(doc *html.Node, owner string) *Publisher {
	return &Publisher{doc: doc, owner: owner, enabled: true}
}

// SetEnabled toggles emission. Disabling retracts any published block.
func (p *Publisher) SetEnabled(enabled bool) {
	p.enabled = enabled
	if !enabled {
		p.Retract()
	}
}

// Enabled reports whether emission is enabled.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// Publish replaces this publisher's block with one describing items.
// It is a no-op when items is empty or emission is disabled.
func (p *Publisher) Publish(items []faq.Item, heading string) error {
	if len(items) == 0 || !p.enabled {
		return nil
	}

	data, err := Marshal(Build(items, heading))
	if err != nil {
		return fmt.Errorf("failed to encode structured data: %w", err)
	}

	p.Retract()
	script := render.Append(
		render.Element("script", "type", "application/ld+json", OwnerAttr, p.owner),
		render.Text(string(data)),
	)
	render.Head(p.doc).AppendChild(script)
	p.current = data
	return nil
}

// Retract removes every block owned by this publisher.
func (p *Publisher) Retract() {
	for _, n := range p.blocks() {
		n.Parent.RemoveChild(n)
	}
	p.current = nil
}

// Current returns the published JSON-LD, or nil if none is published.
func (p *Publisher) Current() []byte {
	if p.current == nil {
		return nil
	}
	return append([]byte(nil), p.current...)
}

func (p *Publisher) blocks() []*html.Node {
	return render.FindAll(p.doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "script" {
			return false
		}
		owner, ok := render.Attr(n, OwnerAttr)
		return ok && owner == p.owner
	})
}
