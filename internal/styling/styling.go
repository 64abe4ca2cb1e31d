// Package styling resolves the widget's JSON styling payload into
// presentation variables.
package styling

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrConfigParse reports a styling payload that is not a JSON object.
// It is never fatal: callers continue with default presentation.
var ErrConfigParse = errors.New("invalid widget config")

// Key is a recognized styling key.
type Key string

const (
	FontFamily      Key = "fontFamily"
	HeaderTextColor Key = "headerTextColor"
	HeaderBgColor   Key = "headerBgColor"
	TitleFontWeight Key = "titleFontWeight"
	TitleFontSize   Key = "titleFontSize"
	BodyBgColor     Key = "bodyBgColor"
	MessageFontSize Key = "messageFontSize"
)

// variables maps each recognized key to the CSS custom property the
// stylesheet reads.
var variables = map[Key]string{
	FontFamily:      "--faq-font-family",
	HeaderTextColor: "--faq-header-text-color",
	HeaderBgColor:   "--faq-header-bg-color",
	TitleFontWeight: "--faq-title-font-weight",
	TitleFontSize:   "--faq-title-font-size",
	BodyBgColor:     "--faq-body-bg-color",
	MessageFontSize: "--faq-message-font-size",
}

// Keys returns the recognized keys in sorted order.
func Keys() []Key {
	keys := make([]Key, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Variable returns the CSS custom property for k.
func Variable(k Key) (string, bool) {
	v, ok := variables[k]
	return v, ok
}

// Config maps recognized keys to non-blank string values.
type Config map[Key]string

// Resolve parses a raw styling payload.
//
// An empty payload yields an empty Config and no error. Malformed JSON, or
// JSON that is not an object, yields an empty Config and an error wrapping
// [ErrConfigParse]. Unrecognized keys, non-string values and blank values
// are ignored.
func Resolve(raw string) (Config, error) {
	cfg := Config{}
	if strings.TrimSpace(raw) == "" {
		return cfg, nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return cfg, fmt.Errorf("%w: expected a JSON object", ErrConfigParse)
	}

	for name, value := range obj {
		key := Key(name)
		if _, known := variables[key]; !known {
			continue
		}
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		cfg[key] = strings.TrimSpace(s)
	}
	return cfg, nil
}

// Presentation is the set of presentation variables applied to a widget's
// host element. The zero value is empty and ready to use.
type Presentation struct {
	vars map[string]string
}

// Apply overlays cfg onto p and returns the keys it rejected.
//
// Only keys present in cfg are written; variables set by earlier calls are
// never cleared. A value that could terminate a CSS declaration (it
// contains ';', '{', '}', '<' or '>') is rejected, mirroring how a browser
// ignores an invalid value passed to style.setProperty.
func (p *Presentation) Apply(cfg Config) []Key {
	if p.vars == nil {
		p.vars = make(map[string]string, len(cfg))
	}

	var rejected []Key
	for _, k := range sortedKeys(cfg) {
		value := cfg[k]
		name, ok := variables[k]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if strings.ContainsAny(value, ";{}<>") {
			rejected = append(rejected, k)
			continue
		}
		p.vars[name] = value
	}
	return rejected
}

// Get returns the value of a CSS custom property.
func (p *Presentation) Get(variable string) (string, bool) {
	v, ok := p.vars[variable]
	return v, ok
}

// Len returns the number of variables set.
func (p *Presentation) Len() int {
	return len(p.vars)
}

// Style renders the variables as an inline style declaration list, sorted
// by property name. An empty Presentation renders as "".
func (p *Presentation) Style() string {
	if len(p.vars) == 0 {
		return ""
	}

	names := make([]string, 0, len(p.vars))
	for name := range p.vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s: %s;", name, p.vars[name])
	}
	return b.String()
}

func sortedKeys(cfg Config) []Key {
	keys := make([]Key, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
