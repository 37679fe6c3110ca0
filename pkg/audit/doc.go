// Package audit emits forensic audit events in RFC5424 syslog format, one
// per access decision, verification cycle, segment creation, and policy
// load. Events go to stdout always and to an optional Postgres store
// (AUDIT_DATABASE_URL) through a buffered, fire-and-forget writer; sink
// failures are reported locally and never fail the operation being audited.
package audit
