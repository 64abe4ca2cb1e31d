package mockbackend

import (
	"reflect"
	"testing"
)

func TestParseFAQFile(t *testing.T) {
	content := `# FAQs for https://example.com/pricing

**URL:** https://example.com/pricing

**First?**
Line one.
  Line two.

**No answer**

**Second?**
Only line.
`
	got := ParseFAQFile(content)
	want := []FAQ{
		{Question: "First?", Answer: "Line one. Line two."},
		{Question: "Second?", Answer: "Only line."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseFAQFile() = %+v, want %+v", got, want)
	}
}

func TestParseFAQFile_Empty(t *testing.T) {
	if got := ParseFAQFile(""); got == nil || len(got) != 0 {
		t.Errorf("ParseFAQFile(\"\") = %#v, want empty non-nil slice", got)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/pricing", "example_pricing_faq.md"},
		{"https://www.example.com/docs/getting-started/", "example_getting-started_faq.md"},
		{"https://example.com/", "example_index_faq.md"},
		{"https://example.com", "example_index_faq.md"},
		{"https://shop.example.org/a/b.html", "shop_b_html_faq.md"},
	}
	for _, tt := range tests {
		if got := FileName(tt.url); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDomainPrefix(t *testing.T) {
	if got := DomainPrefix("https://www.acme.co.uk/x"); got != "acme" {
		t.Errorf("DomainPrefix() = %q, want acme", got)
	}
}
