package constants

// ============================================================================
// Environment Variable Names
// ============================================================================

const (
	// EnvPrefix namespaces every setting bound through viper
	// e.g. masking.min_length -> DATASHIELD_MASKING_MIN_LENGTH
	EnvPrefix = "DATASHIELD"

	// Log levels
	LogLevelDebug = "DEBUG"
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
)

// ============================================================================
// Config Keys
// ============================================================================

const (
	KeyMaskingSensitiveFields = "masking.sensitive_fields"
	KeyMaskingMaskToken       = "masking.mask_token"
	KeyMaskingMinLength       = "masking.min_length"
	KeyMaskingKeepStart       = "masking.keep_start"
	KeyMaskingKeepStartCount  = "masking.keep_start_count"
	KeyMaskingKeepEnd         = "masking.keep_end"
	KeyMaskingKeepEndCount    = "masking.keep_end_count"

	KeyGRPCPort       = "grpc_port"
	KeyMetricsPort    = "metrics_port"
	KeyAuditMode      = "audit_mode"
	KeyStripUpstream  = "strip_upstream"
	KeyRedisURL       = "redis_url"
	KeyRedisFieldsKey = "redis_fields_key"
	KeyAMQPURL        = "amqp_url"
	KeyAuditExchange  = "audit_exchange"

	KeyLogLevel    = "log_level"
	KeyEnvironment = "environment"

	KeyTracingEnabled      = "tracing.enabled"
	KeyTracingEndpoint     = "tracing.endpoint"
	KeyTracingSamplingRate = "tracing.sampling_rate"

	KeyRedisPoolSize       = "redis_pool_size"
	KeyRedisMinIdleConns   = "redis_min_idle_conns"
	KeyRedisPoolTimeoutMs  = "redis_pool_timeout_ms"
	KeyRedisReadTimeoutMs  = "redis_read_timeout_ms"
	KeyRedisWriteTimeoutMs = "redis_write_timeout_ms"
)

// ============================================================================
// Default Values
// ============================================================================

const (
	// Environment
	DefaultEnvironment = "dev"

	// Tracing (OTLP/gRPC collector, off by default)
	DefaultTracingEndpoint = "localhost:4317"
	DefaultSamplingRate    = 1.0

	// Server
	DefaultGRPCPort    = 50051
	DefaultMetricsPort = 9090

	// Redis field source (empty URL disables it)
	DefaultRedisFieldsKey      = "datashield:sensitive_fields"
	DefaultRedisPoolSize       = 10
	DefaultRedisMinIdleConns   = 0
	DefaultRedisPoolTimeoutMs  = 2000
	DefaultRedisReadTimeoutMs  = 1000
	DefaultRedisWriteTimeoutMs = 1000

	// RabbitMQ audit records (empty URL disables the consumer)
	DefaultAuditExchange = "audit.events"

	// DotEnvFile is loaded before binding when present
	DotEnvFile = ".env"
)
