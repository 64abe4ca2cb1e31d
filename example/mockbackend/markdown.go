package mockbackend

import (
	"net/url"
	"strings"
)

// FAQ is one question and answer pair as the backend serves it.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ParseFAQFile parses the backend's FAQ file layout: a line wrapped in
// double asterisks starts a question, and the non-empty lines that follow
// are joined into its answer. Questions without an answer are dropped.
func ParseFAQFile(content string) []FAQ {
	faqs := []FAQ{}
	var (
		question string
		answer   []string
	)
	flush := func() {
		if question != "" && len(answer) > 0 {
			faqs = append(faqs, FAQ{Question: question, Answer: strings.TrimSpace(strings.Join(answer, " "))})
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case len(line) > 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"):
			flush()
			question = strings.Trim(line, "*")
			answer = nil
		case line != "" && question != "":
			answer = append(answer, line)
		}
	}
	flush()
	return faqs
}

// FileName returns the FAQ file name the backend stores for pageURL:
// the first label of the host (without "www.") and the last path segment
// (or "index"), e.g. "example_pricing_faq.md".
func FileName(pageURL string) string {
	prefix, base := nameParts(pageURL)
	name := prefix + "_" + base + "_faq.md"
	if len(name) > 255 {
		name = name[:255]
	}
	return name
}

// DomainPrefix returns the host label FAQ files for pageURL start with.
func DomainPrefix(pageURL string) string {
	prefix, _ := nameParts(pageURL)
	return prefix
}

func nameParts(pageURL string) (prefix, base string) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", "index"
	}
	host := strings.TrimPrefix(u.Host, "www.")
	prefix, _, _ = strings.Cut(host, ".")

	base = "index"
	var segments []string
	for _, s := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) > 0 {
		base = sanitizeSegment(segments[len(segments)-1])
	}
	return prefix, base
}

func sanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '-' || r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
