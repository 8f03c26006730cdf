// Package server provides HTTP routing and middleware for the local page host.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Middleware
//
// [RequestID] tags each request with an X-Request-ID (reusing an inbound one) and stores it on the context.
// [Logging] writes one structured line per request with method, path, status, and duration.
//
// Route groups register themselves against a [Router]; see the web package's Handler.Register.
package server
