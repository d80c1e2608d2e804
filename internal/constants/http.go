// Package constants provides centralized constant definitions for data-shield.
package constants

// ============================================================================
// HTTP Headers
// ============================================================================

const (
	// Request headers
	HeaderAuthorization = "Authorization"
)

// ============================================================================
// HTTP Paths
// ============================================================================

const (
	PathMetrics = "/metrics"
	PathHealth  = "/health"
	PathReady   = "/ready"
)

// ============================================================================
// Health Check
// ============================================================================

const (
	HealthOK = "ok"
)
