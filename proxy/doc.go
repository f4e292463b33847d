// Package proxy lets opaque 64-bit identifiers stand in for native objects
// across the host boundary.
//
// This package implements:
//   - Registry: process-wide map from identifier to proxy, thread-safe
//   - Context: per-call inputs, outputs, and the tagged error record
//   - Dispatcher: method registration and lookup by name
package proxy
