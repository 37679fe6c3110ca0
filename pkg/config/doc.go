// Package config provides configuration management for ztcore.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables. Each attribute tracks the source it came from
// (default, file, or environment) so the running configuration can be
// inspected over the status endpoint and the ztcorectl configuration
// command.
//
// # Key Configuration Options
//
//   - ZTCORE_CONFIG_PATH: Directory containing ztcore.yml
//   - ZTCORE_TRUST_TTL: Trust score validity window in seconds
//   - ZTCORE_VERIFICATION_INTERVAL: Continuous verification cadence
//   - ZTCORE_POLICY_FILE / ZTCORE_SEGMENT_FILE: Definition files
//   - ZTCORE_SESSION_KEY: HMAC key for session token verification
//   - AUDIT_DATABASE_URL / DECISION_DATABASE_URL: Optional persistence
//   - PORT: Server listen port
package config
