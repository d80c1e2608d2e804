package constants

// ============================================================================
// Masking Defaults
// ============================================================================
//
// Used when neither the config file nor the environment sets a value.

const (
	// DefaultSensitiveFields is the comma-separated list of masked field names
	DefaultSensitiveFields = "Authorization,Secret,Token"

	// DefaultMaskToken fills every masked position
	DefaultMaskToken = "*"

	// DefaultMinLength is the shortest value that gets masked
	// Shorter values pass through untouched
	DefaultMinLength = 4

	// DefaultKeepStart/DefaultKeepStartCount control the visible prefix
	DefaultKeepStart      = true
	DefaultKeepStartCount = 2

	// DefaultKeepEnd/DefaultKeepEndCount control the visible suffix
	DefaultKeepEnd      = true
	DefaultKeepEndCount = 2

	// FieldSeparator splits the raw sensitive field list
	FieldSeparator = ","
)

// ============================================================================
// Audit Modes
// ============================================================================

const (
	// AuditModeMask keeps sensitive keys with masked values
	AuditModeMask = "mask"

	// AuditModeFilter drops sensitive keys entirely
	AuditModeFilter = "filter"
)

// ============================================================================
// Token Prefixes
// ============================================================================

const (
	BearerPrefix      = "Bearer "
	BearerPrefixLower = "bearer "
)
