package render

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/jclee2044/faqwidget/internal/faq"
)

const (
	// LoadingMessage is the status text shown when remote resolution begins.
	LoadingMessage = "Loading FAQs..."

	// EmptyMessage is shown when a resolved collection has no items.
	EmptyMessage = "No FAQs available for this page."

	iconClosed = "+"
	iconOpen   = "−"
)

// Kind identifies which of the mutually exclusive views is painted.
type Kind string

const (
	KindNone    Kind = ""
	KindLoading Kind = "loading"
	KindContent Kind = "content"
	KindError   Kind = "error"
)

// Renderer paints widget views into an isolated rendering subtree.
//
// Every paint except [Renderer.UpdateStatus] replaces the subtree's
// children; UpdateStatus mutates the status text of a Loading view in place.
type Renderer struct {
	stylesheet string
}

// New creates a [Renderer] that places stylesheet at the top of every view.
func New(stylesheet string) *Renderer {
	return &Renderer{stylesheet: stylesheet}
}

func (r *Renderer) style() *html.Node {
	return Append(Element("style"), Text(r.stylesheet))
}

func heading(text string) *html.Node {
	return Append(Element("h2", "class", "faq-heading"), Text(text))
}

// Loading paints the busy view: the heading, a spinner and a status line.
func (r *Renderer) Loading(root *html.Node, title string) {
	status := Append(
		Element("p", "class", "faq-status", "role", "status", "aria-live", "polite"),
		Text(LoadingMessage),
	)
	container := Append(
		Element("div", "class", "faq-container", "data-state", string(KindLoading), "aria-busy", "true"),
		heading(title),
		Append(Element("div", "class", "faq-loading"),
			Element("div", "class", "faq-spinner", "aria-hidden", "true"),
			status,
		),
	)
	ReplaceChildren(root, r.style(), container)
}

// UpdateStatus replaces the status text of a Loading view without touching
// any other node. It reports false if root holds no Loading view.
func (r *Renderer) UpdateStatus(root *html.Node, message string) bool {
	status := Find(root, ByClass("faq-status"))
	if status == nil {
		return false
	}
	if c := status.FirstChild; c != nil && c.Type == html.TextNode && c.NextSibling == nil {
		c.Data = message
		return true
	}
	ReplaceChildren(status, Text(message))
	return true
}

// Content paints the heading and one collapsible entry per item, or the
// empty notice when items is empty. All entries start closed; the first
// question is the roving focus target.
func (r *Renderer) Content(root *html.Node, title string, items []faq.Item) *View {
	container := Element("div", "class", "faq-container", "data-state", string(KindContent))
	Append(container, heading(title))

	view := &View{}
	if len(items) == 0 {
		Append(container, Append(Element("p", "class", "faq-empty"), Text(EmptyMessage)))
		ReplaceChildren(root, r.style(), container)
		return view
	}

	list := Element("div", "class", "faq-list")
	for i, it := range items {
		e := newEntry(i, it)
		view.entries = append(view.entries, e)
		Append(list, e.item)
	}
	Append(container, list)
	ReplaceChildren(root, r.style(), container)

	view.SetFocus(0)
	return view
}

// Error paints the error text alone, without a heading.
func (r *Renderer) Error(root *html.Node, message string) {
	ReplaceChildren(root, r.style(),
		Append(Element("div", "class", "faq-error", "role", "alert", "data-state", string(KindError)), Text(message)),
	)
}

// View gives controlled access to the entries of a painted Content view.
type View struct {
	entries []entry
}

type entry struct {
	item     *html.Node
	question *html.Node
	answer   *html.Node
	icon     *html.Node
}

func newEntry(i int, it faq.Item) entry {
	idx := strconv.Itoa(i)
	qid, aid := "faq-q-"+idx, "faq-a-"+idx

	icon := Append(Element("span", "class", "faq-icon", "aria-hidden", "true"), Text(iconClosed))
	question := Append(
		Element("button",
			"type", "button",
			"class", "faq-question",
			"id", qid,
			"aria-expanded", "false",
			"aria-controls", aid,
			"tabindex", "-1",
		),
		Append(Element("span", "class", "faq-question-text"), Text(it.Question)),
		icon,
	)
	answer := Append(
		Element("div",
			"class", "faq-answer",
			"id", aid,
			"role", "region",
			"aria-labelledby", qid,
			"hidden", "",
		),
		Text(it.Answer),
	)
	item := Append(Element("div", "class", "faq-item", "data-index", idx), question, answer)

	return entry{item: item, question: question, answer: answer, icon: icon}
}

// Len returns the number of entries.
func (v *View) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// SetOpen expands or collapses entry i. Out of range indexes are ignored.
func (v *View) SetOpen(i int, open bool) {
	if i < 0 || i >= v.Len() {
		return
	}
	e := v.entries[i]
	if open {
		SetAttr(e.question, "aria-expanded", "true")
		RemoveAttr(e.answer, "hidden")
		SetAttr(e.item, "class", "faq-item open")
		e.icon.FirstChild.Data = iconOpen
		return
	}
	SetAttr(e.question, "aria-expanded", "false")
	SetAttr(e.answer, "hidden", "")
	SetAttr(e.item, "class", "faq-item")
	e.icon.FirstChild.Data = iconClosed
}

// IsOpen reports whether entry i is expanded.
func (v *View) IsOpen(i int) bool {
	if i < 0 || i >= v.Len() {
		return false
	}
	val, _ := Attr(v.entries[i].question, "aria-expanded")
	return val == "true"
}

// SetFocus makes entry i's question the single tab stop.
func (v *View) SetFocus(i int) {
	if i < 0 || i >= v.Len() {
		return
	}
	for j, e := range v.entries {
		if j == i {
			SetAttr(e.question, "tabindex", "0")
		} else {
			SetAttr(e.question, "tabindex", "-1")
		}
	}
}

// Export builds a plain document fragment (heading, then a question
// heading and answer paragraph per item) for non-interactive output.
func Export(title string, items []faq.Item) *html.Node {
	section := Append(Element("section"), Append(Element("h2"), Text(title)))
	for _, it := range items {
		Append(section,
			Append(Element("h3"), Text(it.Question)),
			Append(Element("p"), Text(it.Answer)),
		)
	}
	return section
}
