// Package assets provides the embedded stylesheet and page shells used by
// the widget and the preview gallery.
//
// This package uses Go's embed directive so the library and the CLI ship as
// a single binary without external asset files.
package assets

import "embed"

// Files is an embedded filesystem containing the widget assets.
//
// The filesystem structure is:
//
//	files/
//	  widget.css    - stylesheet placed in every widget's isolated subtree
//	  host.html     - default host document a widget mounts into
//	  gallery.html  - preview gallery index page
//
//go:embed files/*
var Files embed.FS

// Stylesheet returns the widget stylesheet.
func Stylesheet() string {
	b, err := Files.ReadFile("files/widget.css")
	if err != nil {
		// embedded at compile time; unreachable unless the build is broken
		panic("assets: widget.css missing: " + err.Error())
	}
	return string(b)
}
