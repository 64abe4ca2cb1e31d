package sanitize

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/jclee2044/faqwidget/internal/faq"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	return v
}

func TestNormalize_DropsBlankEntries(t *testing.T) {
	candidate := decode(t, `[
		{"question": " ", "answer": "x"},
		{"question": "Q", "answer": " "},
		{"question": "Q2", "answer": "A2"}
	]`)

	got := Normalize(candidate)
	want := []faq.Item{{Question: "Q2", Answer: "A2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestNormalize_NonArrayInput(t *testing.T) {
	tests := []struct {
		name      string
		candidate any
	}{
		{"nil", nil},
		{"string", "not a list"},
		{"number", 42.0},
		{"object", map[string]any{"question": "Q", "answer": "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.candidate)
			if got == nil {
				t.Fatal("Normalize() = nil, want empty slice")
			}
			if len(got) != 0 {
				t.Errorf("len(Normalize()) = %d, want 0", len(got))
			}
		})
	}
}

func TestNormalize_RequiresTextFields(t *testing.T) {
	candidate := decode(t, `[
		{"question": 1, "answer": "A"},
		{"question": "Q", "answer": null},
		{"question": "Q"},
		"just a string",
		{"question": "  Padded  ", "answer": "\tTabbed\n"}
	]`)

	got := Normalize(candidate)
	want := []faq.Item{{Question: "Padded", Answer: "Tabbed"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestNormalize_TruncatesToDisplayCap(t *testing.T) {
	list := make([]any, 0, 15)
	for i := 0; i < 15; i++ {
		list = append(list, map[string]any{
			"question": fmt.Sprintf("Q%d", i),
			"answer":   fmt.Sprintf("A%d", i),
		})
	}

	got := Normalize(list)
	if len(got) != faq.DisplayCap {
		t.Fatalf("len(Normalize()) = %d, want %d", len(got), faq.DisplayCap)
	}
	for i, it := range got {
		if it.Question != fmt.Sprintf("Q%d", i) {
			t.Errorf("item %d Question = %q, want Q%d (order must be preserved)", i, it.Question, i)
		}
	}
}

func TestNormalize_CapCountsSurvivorsOnly(t *testing.T) {
	list := []any{map[string]any{"question": "", "answer": "dropped"}}
	for i := 0; i < 10; i++ {
		list = append(list, map[string]any{"question": fmt.Sprintf("Q%d", i), "answer": "A"})
	}

	got := Normalize(list)
	if len(got) != 10 {
		t.Fatalf("len(Normalize()) = %d, want 10", len(got))
	}
	if got[9].Question != "Q9" {
		t.Errorf("last item = %q, want Q9", got[9].Question)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	once := Normalize(decode(t, `[
		{"question": " Q1 ", "answer": " A1 "},
		{"question": "", "answer": "A"},
		{"question": "Q2", "answer": "A2"}
	]`))
	twice := Normalize(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize(Normalize(x)) = %+v, want %+v", twice, once)
	}
}

func TestNormalize_KeepsMarkupAsText(t *testing.T) {
	got := Normalize([]any{map[string]any{
		"question": "<script>alert(1)</script>",
		"answer":   "<b>bold</b>",
	}})
	if len(got) != 1 {
		t.Fatalf("len(Normalize()) = %d, want 1", len(got))
	}
	if got[0].Question != "<script>alert(1)</script>" {
		t.Errorf("Question = %q, markup must be preserved as text", got[0].Question)
	}
}

func TestParseInline(t *testing.T) {
	items, err := ParseInline(`[{"question":"Q","answer":"A"}]`)
	if err != nil {
		t.Fatalf("ParseInline() error = %v", err)
	}
	if len(items) != 1 || items[0].Question != "Q" {
		t.Errorf("ParseInline() = %+v, want one item Q", items)
	}
}

func TestParseInline_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"malformed json", `[{"question":`, ErrInlineMalformed},
		{"object not array", `{"question":"Q","answer":"A"}`, ErrInlineMalformed},
		{"empty", ``, ErrInlineMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInline(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseInline() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseInline_RejectsOversizedWithoutParsing(t *testing.T) {
	// not valid JSON: a parse attempt would report ErrInlineMalformed instead
	raw := "[" + strings.Repeat("x", faq.InlineByteCap)

	_, err := ParseInline(raw)
	if !errors.Is(err, ErrInlineTooLarge) {
		t.Errorf("ParseInline() error = %v, want ErrInlineTooLarge", err)
	}
}

func TestParseInline_TruncatesCandidatesBeforeSanitizing(t *testing.T) {
	// 100 invalid entries followed by a valid one: the valid entry lies
	// beyond the candidate cap and must not survive
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < faq.InlineCandidateCap; i++ {
		b.WriteString(`{"question":"","answer":""},`)
	}
	b.WriteString(`{"question":"late","answer":"entry"}]`)

	items, err := ParseInline(b.String())
	if err != nil {
		t.Fatalf("ParseInline() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}
