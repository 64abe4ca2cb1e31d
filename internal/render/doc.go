// Package render paints the widget's views into an isolated rendering
// subtree built from golang.org/x/net/html nodes.
//
// Four mutually exclusive views exist: Loading, Content, Error and none.
// Text is always inserted as text nodes, so any markup in FAQ data is
// escaped on serialization and never interpreted. The package also holds
// the small DOM helpers shared with the structured-data publisher.
package render
