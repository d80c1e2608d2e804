package constants

// ============================================================================
// Service Identity
// ============================================================================

const (
	ServiceName    = "data-shield"
	ServiceVersion = "1.0.0"

	// TracerName is the instrumentation scope for spans opened by this service
	TracerName = "data-shield"
)
