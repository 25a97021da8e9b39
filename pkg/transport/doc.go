// Package transport holds the HTTP plumbing shared by the credentialwatch
// surfaces: the middleware chain (panic recovery, request IDs, access
// logging) and the mapping from domain errors to JSON error responses.
//
// Middleware are plain func(http.Handler) http.Handler values. The
// request ID assigned by RequestID is available to handlers through
// RequestIDFromContext and is echoed in the X-Request-ID response header.
package transport
