// Package main provides the ztcorectl CLI for the ztcore access decision
// engine.
//
// ztcore continuously evaluates whether entities (users, services, devices,
// applications) should be granted access to resources. Trust is assessed
// from identity, device, location, behavior, and network evidence; request
// risk and the policy table tighten the resulting decision; granted access
// is re-verified on a fixed cadence and revoked when the posture degrades.
//
// # Architecture
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/engine: Access decision coordinator and decision retention
//   - pkg/trust: Trust factor assessors and the trust score engine
//   - pkg/risk: Request risk assessment
//   - pkg/policy: Policy table, evaluation, and conflict resolution
//   - pkg/verify: Continuous verification and anomaly detection
//   - pkg/segment: Micro-segmentation manager
//   - pkg/audit: RFC 5424 audit events
//   - pkg/config: Configuration management
//
// # Quick Start
//
//	# Generate a session key for token verification
//	ztcorectl session-key generate > session_key
//	export ZTCORE_SESSION_KEY=$(cat session_key)
//
//	# Run database migrations (only when persistence is configured)
//	ztcorectl db migrate
//
//	# Start the server
//	ztcorectl server
//
// # Environment Variables
//
//   - ZTCORE_SESSION_KEY: HMAC key for session token verification
//   - ZTCORE_POLICY_FILE / ZTCORE_SEGMENT_FILE: Definition files
//   - DATABASE_URL: PostgreSQL connection string for migrations
//   - AUDIT_DATABASE_URL / DECISION_DATABASE_URL: Optional persistence
//   - ZTCORE_LOG_LEVEL: Log level (debug, info, warn, error)
//   - PORT: Server port (default: 8090)
package main
