// Package server implements the stockroom HTTP API surface.
//
// Owns:
//   - HTTP routing, handlers, and request/response contracts
//   - Request validation against the embedded JSON schemas
//   - Translation of every failure into a StructuredError
//   - The item stores (memory and in-memory SQLite)
//
// Does not own:
//   - Configuration loading (shared.Loader)
//   - Key comparison and arithmetic (shared.Gate, shared.Divide)
//
// Invariants:
//   - Every non-2xx body is a StructuredError; handler failures go through writeError
//   - Item ids are assigned by the Store, start at 1 and are never reused
//   - /secure-data is wrapped by RequireAPIKey
//   - The configured API key is never written to a response or a log line
package server
