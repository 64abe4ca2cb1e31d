// Package accordion implements exclusive-open expand/collapse selection and
// keyboard navigation over a list of questions.
//
// The controller holds state only. Callers dispatch events into it and
// apply the returned changes to whatever view they own.
package accordion

// None marks the absence of an open item.
const None = -1

// Key names understood by [Controller.HandleKey]. They follow the DOM
// KeyboardEvent.key values.
const (
	KeyEnter     = "Enter"
	KeySpace     = " "
	KeySpaceName = "Space"
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
)

// Change is a state transition of one item.
type Change struct {
	Index int
	Open  bool
}

// Controller tracks which item is open and which question has focus.
// It is not safe for concurrent use.
type Controller struct {
	size  int
	open  int
	focus int
}

// New returns a controller for size items with nothing open and focus on
// the first item.
func New(size int) *Controller {
	if size < 0 {
		size = 0
	}
	return &Controller{size: size, open: None}
}

// Len returns the number of items.
func (c *Controller) Len() int {
	return c.size
}

// Open returns the open index, or [None].
func (c *Controller) Open() int {
	return c.open
}

// Focus returns the focused index, or [None] if there are no items.
func (c *Controller) Focus() int {
	if c.size == 0 {
		return None
	}
	return c.focus
}

// Toggle opens index, closing any previously open item, or closes index if
// it is already open. It returns the changes in the order they should be
// applied. Out of range indexes yield no changes.
func (c *Controller) Toggle(index int) []Change {
	if index < 0 || index >= c.size {
		return nil
	}
	if c.open == index {
		c.open = None
		return []Change{{Index: index, Open: false}}
	}

	var changes []Change
	if c.open != None {
		changes = append(changes, Change{Index: c.open, Open: false})
	}
	c.open = index
	return append(changes, Change{Index: index, Open: true})
}

// Move shifts focus from index by delta positions, wrapping at both ends,
// and returns the new focus. Open state is never affected.
func (c *Controller) Move(index, delta int) int {
	if c.size == 0 {
		return None
	}
	c.focus = ((index+delta)%c.size + c.size) % c.size
	return c.focus
}

// HandleKey dispatches a key pressed while the question at index has focus.
// Enter and Space toggle; ArrowDown and ArrowUp move focus cyclically.
// handled reports whether the key was recognized.
func (c *Controller) HandleKey(index int, key string) (changes []Change, focus int, handled bool) {
	if index < 0 || index >= c.size {
		return nil, c.Focus(), false
	}
	switch key {
	case KeyEnter, KeySpace, KeySpaceName:
		c.focus = index
		return c.Toggle(index), c.focus, true
	case KeyArrowDown:
		return nil, c.Move(index, 1), true
	case KeyArrowUp:
		return nil, c.Move(index, -1), true
	}
	return nil, c.Focus(), false
}
