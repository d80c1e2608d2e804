package constants

// ============================================================================
// Validation Error Messages
// ============================================================================

const (
	ErrConfigRequired   = "masking config is required"
	ErrShieldRequired   = "shield is required"
	ErrLoggerRequired   = "logger is required"
	ErrInvalidAuditMode = "invalid audit mode: %q"
	ErrConfigRead       = "failed to read config file: %w"
	ErrConfigDecode     = "failed to decode config: %w"
	ErrInvalidPort      = "ports must be positive"
	ErrSamplingRate     = "tracing sampling rate must be within [0, 1]: %v"
	ErrUnknownFlag      = "unknown flag: %s"
	ErrFlagBind         = "failed to bind flag: %w"
)

// ============================================================================
// CLI Error Messages
// ============================================================================

const (
	ErrMaskFailures = "%d of %d records could not be masked"
)

// ============================================================================
// JSON Masking Error Messages
// ============================================================================

const (
	ErrJSONNotObject     = "top-level value is not an object"
	ErrJSONTrailingData  = "unexpected data after top-level object"
	ErrJSONSyntax        = "%w: %v"
	ErrJSONFieldNotValue = "%w: field %q holds %s"
)

// ============================================================================
// Token Error Messages
// ============================================================================

const (
	ErrMissingBearer = "missing bearer token"
	ErrInvalidToken  = "invalid token: %w"
)

// ============================================================================
// Redis Error Messages
// ============================================================================

const (
	ErrPoolOptionsRequired = "pool options is required"
	ErrRedisURLParse       = "failed to parse redis url: %w"
	ErrRedisConnect        = "failed to connect to redis: %w"
	ErrRedisClientNil      = "redis client is nil"
	ErrStoreNil            = "store is nil"
	ErrRedisOperation      = "redis error: %w"
)

// ============================================================================
// Audit Reasons (for logging)
// ============================================================================

const (
	ReasonMalformedRequest = "malformed_request"
	ReasonMalformedRecord  = "malformed_record"
	ReasonTypeMismatch     = "type_mismatch"
)

// ============================================================================
// Tracing Error Messages
// ============================================================================

const (
	ErrCollectorDial = "failed to dial trace collector %s: %w"
	ErrTraceExporter = "failed to create trace exporter: %w"
	ErrTraceResource = "failed to build trace resource: %w"
)
