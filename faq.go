package faqwidget

import (
	"errors"

	"github.com/jclee2044/faqwidget/internal/accordion"
	"github.com/jclee2044/faqwidget/internal/acquire"
	"github.com/jclee2044/faqwidget/internal/faq"
)

// FAQ is a question/answer pair as displayed by a [Widget]. Both fields are
// trimmed plain text.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Phase is the resolution stage of a widget's current mount cycle.
type Phase string

const (
	// PhaseIdle means the widget has not been mounted.
	PhaseIdle Phase = "idle"

	// PhaseLoading means remote resolution has begun.
	PhaseLoading Phase = "loading"

	// PhaseRetrying means an attempt did not resolve and the widget is
	// waiting before the next one.
	PhaseRetrying Phase = "retrying"

	// PhaseResolved means content is displayed.
	PhaseResolved Phase = "resolved"

	// PhaseFailed means the error view is displayed.
	PhaseFailed Phase = "failed"
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	return string(p)
}

// Snapshot is a point-in-time copy of a widget's view state.
type Snapshot struct {
	// Name is the widget's name, if one was set with [WithWidgetName].
	Name string

	// Generation identifies the mount cycle. It increases on every Mount.
	Generation uint64

	Phase       Phase
	Attempt     int
	MaxAttempts int

	// Message is the status text while loading or retrying, or the error
	// text once failed.
	Message string

	// FAQs are the displayed items, in order.
	FAQs []FAQ

	// OpenIndex is the expanded item, or -1.
	OpenIndex int

	// FocusIndex is the question holding the roving tab stop, or -1.
	FocusIndex int
}

// Resolution errors. A failed Mount returns one of these, possibly wrapped.
var (
	ErrNoSource     = acquire.ErrNoSource
	ErrNoFAQs       = acquire.ErrNoFAQs
	ErrNotGenerated = acquire.ErrNotGenerated
	ErrTimeout      = acquire.ErrTimeout

	// ErrSuperseded is returned by a Mount whose cycle was replaced by a
	// later Mount before it finished. A superseded cycle leaves the
	// widget untouched.
	ErrSuperseded = errors.New("mount superseded by a newer cycle")

	// ErrNoContent is returned by exports when no collection is displayed.
	ErrNoContent = errors.New("widget is not displaying content")
)

// StatusError reports a non-2xx response from the FAQ backend.
type StatusError = acquire.StatusError

func toPublicFAQs(items []faq.Item) []FAQ {
	out := make([]FAQ, len(items))
	for i, it := range items {
		out[i] = FAQ{Question: it.Question, Answer: it.Answer}
	}
	return out
}

// Key names accepted by [Widget.HandleKey]. They follow DOM
// KeyboardEvent.key values; "Space" is accepted as an alias of " ".
const (
	KeyEnter     = accordion.KeyEnter
	KeySpace     = accordion.KeySpace
	KeyArrowDown = accordion.KeyArrowDown
	KeyArrowUp   = accordion.KeyArrowUp
)

// NoIndex is the OpenIndex or FocusIndex of a [Snapshot] with nothing
// open or focusable.
const NoIndex = accordion.None
