package constants

// ============================================================================
// ECS (Elastic Common Schema) Field Keys
// ============================================================================
//
// Reference: https://www.elastic.co/guide/en/ecs/current/ecs-field-reference.html

const (
	// Base fields
	ECSFieldTimestamp = "@timestamp"

	// Log fields
	ECSFieldLogLevel = "log.level"

	// Event fields
	ECSFieldEventAction  = "event.action"
	ECSFieldEventOutcome = "event.outcome"
	ECSFieldEventReason  = "event.reason"

	// User fields
	ECSFieldUserID = "user.id"

	// Error fields
	ECSFieldErrorMessage = "error.message"

	// Audit fields (custom)
	ECSFieldAuditMode    = "audit.mode"
	ECSFieldAuditHeaders = "audit.headers"
	ECSFieldAuditQuery   = "audit.query"
	ECSFieldAuditRecord  = "audit.record"
	ECSFieldAuditMasked  = "audit.masked_fields"
	ECSFieldTokenJTI     = "token.jti"

	// Trace fields (ECS standard)
	ECSFieldTraceID = "trace.id"
	ECSFieldSpanID  = "span.id"
)

// ============================================================================
// ECS Event Actions
// ============================================================================

const (
	EventActionAudit       = "audit"
	EventActionAuditRecord = "audit_record"
)

// ============================================================================
// ECS Event Outcomes
// ============================================================================

const (
	EventOutcomeSuccess = "success"
	EventOutcomeFailure = "failure"
)

// ============================================================================
// ECS Version
// ============================================================================

const (
	ECSVersion = "8.11"
)
