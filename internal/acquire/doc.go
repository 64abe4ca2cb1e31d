// Package acquire resolves a widget's FAQ collection.
//
// Resolution prefers embedded data and falls back to the backend's
// page-faqs API. Remote resolution runs a bounded, strictly sequential retry
// loop: an empty response carrying an in-progress signal (an FAQ file
// reference, a just-crawled or faq-generated flag, or a "generating" status
// message) is retried after a fixed backoff, while an empty response without
// such a signal ends resolution immediately.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with per-request timeout and size limit
//   - [Resolver]: the retry state machine
//   - [RemoteResponse]: the backend's reply shape
//
// Users of the faqwidget library should not need to interact with this
// package directly.
package acquire
