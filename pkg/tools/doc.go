// Package tools defines the tool catalog types shared by the credentialwatch
// workflows: descriptors for discovered remote operations, the name resolver
// that maps a short operation name onto a namespaced catalog entry, and the
// canned responses served when no endpoint can answer.
//
// Everything in this package is pure. Connection handling lives in
// pkg/tools/mcp.
package tools
