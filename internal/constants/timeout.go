package constants

import "time"

// ============================================================================
// Timeouts
// ============================================================================

const (
	// InitTimeout is the timeout for initialization (Redis connection, etc.)
	InitTimeout = 5 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful shutdown
	GracefulShutdownTimeout = 10 * time.Second

	// TracerShutdownTimeout bounds the final span flush
	TracerShutdownTimeout = 5 * time.Second

	// ReconnectDelay is the pause between MQ reconnection attempts
	ReconnectDelay = 5 * time.Second
)
