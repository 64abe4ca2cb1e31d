// Package faq holds the question/answer model shared by the widget's
// internal packages.
package faq

const (
	// DisplayCap is the maximum number of items a collection may hold
	// once sanitized.
	DisplayCap = 10

	// InlineCandidateCap bounds how many raw inline entries are considered
	// before sanitization.
	InlineCandidateCap = 100

	// InlineByteCap bounds the size of a raw inline data block.
	InlineByteCap = 64 * 1024
)

// Item is a single question/answer pair. Both fields are plain text,
// trimmed and non-empty.
type Item struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Clone returns a copy of items, or nil if items is nil.
func Clone(items []Item) []Item {
	if items == nil {
		return nil
	}
	return append([]Item(nil), items...)
}
