// Package api defines the wire types of the credentialwatch HTTP surface:
// sweep and chat requests and responses, the tools listing, and the
// structured APIError returned for failed requests.
//
// The package performs no I/O.
package api
