// Package server provides HTTP routing, middleware, and the JSON API over a movie store.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path/{wildcard}" patterns on an [http.ServeMux],
// so method mismatches answer 405 and path values are read with [http.Request.PathValue].
//
// # Middleware
//
//   - [RequestID] : reuses or generates X-Request-ID (UUID v4) and stores it on the context
//   - [Logging] : one structured log line per request
//   - [Recover] : converts handler panics into 500 responses
//
// # API
//
// [API] exposes users, movies and reviews. Errors map to status codes via [StatusFor]:
//   - invalid input or path values: 400
//   - missing records and lookup misses: 404
//   - reviews on a backend without review support: 501
//   - lookup failures and an open circuit breaker: 502
//   - storage failures: 500, with the detail kept out of the response body
//
// # Server
//
// [Server] wraps [http.Server] with read/write timeouts and shuts down gracefully when its context ends.
package server
