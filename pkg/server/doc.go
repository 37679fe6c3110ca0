// Package server provides the HTTP API surface for ztcore.
//
// The server exposes access evaluation, trust lookup, on-demand
// verification, segment administration, and the decision/policy listings.
// Handlers live in the endpoints subpackage as factories over the engine
// collaborators; session verification and rate limiting live in middleware.
package server
