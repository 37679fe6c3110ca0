// Package model defines the shared domain types of the zero-trust engine:
// trust scores, risk assessments, access requests and decisions,
// micro-segments, and continuous verification results.
//
// Types here are plain data. Behavior lives in the packages that produce
// them (pkg/trust, pkg/risk, pkg/engine, pkg/segment, pkg/verify).
package model
