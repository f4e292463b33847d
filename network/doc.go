// Package network carries host invocations to the proxy layer.
//
// This package implements:
//   - Framed TCP connector: length-prefixed JSON frames (protocol.go)
//   - ZeroMQ connector: ROUTER socket, one JSON frame per call
//   - Wire codec between JSON values and hostdata containers (codec.go)
//   - Optional shared-token authentication (auth.go)
//
// Both connectors decode a frame into a Request, run it through the shared
// Handler, and write back the Response. UTF-16 strings travel as arrays of
// code units so that ill-formed input can cross the wire and be rejected at
// the encoding boundary rather than mangled by JSON string escaping.
package network
