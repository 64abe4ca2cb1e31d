// Package faqwidget renders an embeddable FAQ component into an HTML host
// document.
//
// A [Widget] displays up to ten question/answer pairs taken either from an
// inline JSON data block or from a remote FAQ backend. Remote resolution
// tolerates a backend that is still generating content: it retries a
// bounded number of times with a fixed backoff and a per-request timeout,
// showing status text between attempts. Displayed FAQs are mirrored into a
// schema.org FAQPage structured-data block in the host document's <head>.
//
// # Quick Start
//
//	w, err := faqwidget.NewWidget()
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	err = w.Mount(ctx, faqwidget.Attributes{
//	    APIBase: "http://localhost:8000",
//	    URL:     "https://example.com/pricing",
//	})
//	page, _ := w.HTML()
//
// The widget's markup lives in a declarative shadow root
// (<template shadowrootmode="open">) inside a <faq-widget> element, so host
// page styles do not leak into it. Styling keys passed in
// [Attributes].Config become CSS custom properties on the host element.
//
// # Interaction
//
// Items form an accordion with at most one item open. [Widget.Toggle] and
// [Widget.HandleKey] dispatch clicks and key presses into it; arrow keys
// move a roving focus without changing which item is open.
//
// # Gallery
//
// [Gallery] mounts several named widgets and serves them over HTTP with a
// live index, a JSON snapshot API, a Server-Sent Events stream and
// Prometheus metrics. With [WithRefreshInterval] it re-mounts widgets
// periodically so regenerated FAQs show up. The faqwidget command wraps it as "faqwidget serve".
//
// # Architecture
//
// The internal packages are:
//
//   - internal/sanitize: bounds and normalizes candidate FAQ lists
//   - internal/styling: styling payload and presentation variables
//   - internal/acquire: backend client and retry state machine
//   - internal/render: view painting onto html.Node trees
//   - internal/accordion: exclusive-open selection and keyboard focus
//   - internal/schema: FAQPage structured data
//   - internal/store, internal/server: gallery snapshots and HTTP server
//   - internal/refresh: periodic gallery re-mounts
//   - internal/metrics: gallery Prometheus metrics
package faqwidget
