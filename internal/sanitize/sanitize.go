// Package sanitize turns untrusted candidate FAQ lists into bounded,
// well-formed collections.
//
// Candidates come either from an embedded data block or from the remote
// API's "faqs" field. Both paths go through [Normalize]; the embedded path
// additionally passes the size and count caps enforced by [ParseInline].
package sanitize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jclee2044/faqwidget/internal/faq"
)

var (
	// ErrInlineTooLarge is returned when an inline payload exceeds
	// [faq.InlineByteCap]. The payload is never parsed.
	ErrInlineTooLarge = errors.New("inline data exceeds size limit")

	// ErrInlineMalformed is returned when an inline payload is not a JSON
	// array.
	ErrInlineMalformed = errors.New("inline data is not a JSON array")
)

// Normalize validates a decoded candidate value and returns the surviving
// items in source order.
//
// Non-array input yields an empty collection. An entry survives only if it
// is an object whose "question" and "answer" fields are both strings that
// are non-empty after trimming. The result holds at most [faq.DisplayCap]
// items.
//
// Normalize also accepts []faq.Item and []map[string]any so that already
// normalized collections can be passed through again; the function is
// idempotent.
func Normalize(candidate any) []faq.Item {
	out := make([]faq.Item, 0)

	add := func(q, a string) bool {
		q = strings.TrimSpace(q)
		a = strings.TrimSpace(a)
		if q == "" || a == "" {
			return true
		}
		out = append(out, faq.Item{Question: q, Answer: a})
		return len(out) < faq.DisplayCap
	}

	switch list := candidate.(type) {
	case []faq.Item:
		for _, it := range list {
			if !add(it.Question, it.Answer) {
				break
			}
		}
	case []any:
		for _, entry := range list {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if !addEntry(m, add) {
				break
			}
		}
	case []map[string]any:
		for _, m := range list {
			if !addEntry(m, add) {
				break
			}
		}
	}

	return out
}

// addEntry extracts text fields from a decoded JSON object and reports
// whether more items may be added.
func addEntry(m map[string]any, add func(q, a string) bool) bool {
	q, qok := m["question"].(string)
	a, aok := m["answer"].(string)
	if !qok || !aok {
		return true
	}
	return add(q, a)
}

// ParseInline decodes an embedded data block.
//
// Payloads larger than [faq.InlineByteCap] are rejected without being
// parsed. The payload must decode to a JSON array; arrays longer than
// [faq.InlineCandidateCap] are truncated before [Normalize] runs.
func ParseInline(raw string) ([]faq.Item, error) {
	if len(raw) > faq.InlineByteCap {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInlineTooLarge, len(raw), faq.InlineByteCap)
	}

	var candidate any
	if err := json.Unmarshal([]byte(raw), &candidate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInlineMalformed, err)
	}

	list, ok := candidate.([]any)
	if !ok {
		return nil, ErrInlineMalformed
	}
	if len(list) > faq.InlineCandidateCap {
		list = list[:faq.InlineCandidateCap]
	}

	return Normalize(list), nil
}
