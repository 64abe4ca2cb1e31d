package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HostTag is the element name a widget mounts into.
const HostTag = "faq-widget"

// Element creates an element node. attrs are key/value pairs.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Text creates a text node. Text is escaped when rendered.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Append adds children to parent and returns parent.
func Append(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		parent.AppendChild(c)
	}
	return parent
}

// ReplaceChildren detaches every child of n and appends children.
func ReplaceChildren(n *html.Node, children ...*html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	Append(n, children...)
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key on n, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key from n.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// HasClass reports whether n carries class name.
func HasClass(n *html.Node, name string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == name {
			return true
		}
	}
	return false
}

// Find returns the first node in n's subtree (n included, depth-first)
// matching pred, or nil.
func Find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node in n's subtree matching pred, in document
// order.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// ByAtom matches element nodes of the given atom.
func ByAtom(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

// ByClass matches element nodes carrying class name.
func ByClass(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, name)
	}
}

// TextContent concatenates the text nodes under n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// RenderString serializes n.
func RenderString(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderChildren serializes the children of n, without n itself.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// ParseHost parses a host document and returns it with its mount element.
//
// The mount element is the first <faq-widget> in the document. If there is
// none, one is appended to <body>.
func ParseHost(r io.Reader) (doc, host *html.Node, err error) {
	doc, err = html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse host document: %w", err)
	}

	host = Find(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == HostTag
	})
	if host == nil {
		body := Find(doc, ByAtom(atom.Body))
		if body == nil {
			return nil, nil, errors.New("host document has no body")
		}
		host = Element(HostTag)
		body.AppendChild(host)
	}
	return doc, host, nil
}

// ShadowRoot returns host's isolated rendering subtree, creating it if
// needed. The subtree is a declarative shadow root: an open <template>
// that is host's only element child.
func ShadowRoot(host *html.Node) *html.Node {
	for c := host.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Template {
			if mode, _ := Attr(c, "shadowrootmode"); mode == "open" {
				return c
			}
		}
	}
	tmpl := Element("template", "shadowrootmode", "open")
	ReplaceChildren(host, tmpl)
	return tmpl
}

// Head returns the document's <head>, creating it if needed.
func Head(doc *html.Node) *html.Node {
	if head := Find(doc, ByAtom(atom.Head)); head != nil {
		return head
	}
	htmlEl := Find(doc, ByAtom(atom.Html))
	if htmlEl == nil {
		htmlEl = Element("html")
		doc.AppendChild(htmlEl)
	}
	head := Element("head")
	htmlEl.InsertBefore(head, htmlEl.FirstChild)
	return head
}
