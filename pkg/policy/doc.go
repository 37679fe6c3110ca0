// Package policy stores zero-trust policies and matches access requests
// against them.
//
// A policy matches a request when every non-empty scope dimension
// intersects the request's attributes and every weighted condition holds.
// Conditions gate all-or-nothing; weights are recorded for provenance. When
// several matched policies demand different actions, resolution is
// most-restrictive-wins: deny beats challenge and step-up, which beat
// allow. Among equally restrictive policies the lower priority number wins
// the tie.
package policy
