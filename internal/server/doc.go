// Package server provides the HTTP preview gallery for mounted widgets.
//
// It serves a gallery index, each widget's rendered host document, a JSON
// snapshot API, a Server-Sent Events stream of snapshot updates, a
// refresh endpoint that remounts a widget and, when given a handler,
// Prometheus metrics. Routing, middleware and CORS are handled by chi.
//
// The server shuts down gracefully when its start context is cancelled.
package server
