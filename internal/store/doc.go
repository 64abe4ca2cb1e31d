// Package store keeps the latest snapshot of every widget served by the
// preview gallery and fans updates out to subscribers.
//
// The main components are:
//
//   - [Store]: storage and subscription operations
//   - [MemoryStore]: in-memory implementation with pub/sub
//   - [Snapshot]: storage representation of a widget's view state
//
// Subscribers receive updates via channels with non-blocking sends, so a
// slow subscriber misses updates rather than stalling widget rendering.
package store
