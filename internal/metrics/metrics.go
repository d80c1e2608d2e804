package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "data_shield"

// ============================================================================
// Histogram bucket configurations
// ============================================================================

const (
	// Audit check: 50µs ~ 100ms (header copy + masking + log write)
	requestDurationMin   = 0.00005
	requestDurationMax   = 0.1
	requestDurationCount = 12
)

// ============================================================================
// Histograms - Latency measurements
// ============================================================================

var (
	// RequestDuration: Time to audit one ext_authz check
	// Labels: mode (mask/filter), result (ok/malformed)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent auditing check requests",
			Buckets:   prometheus.ExponentialBucketsRange(requestDurationMin, requestDurationMax, requestDurationCount),
		},
		[]string{"mode", "result"},
	)
)

// ============================================================================
// Counters - Request/Field counts
// ============================================================================

var (
	// RequestsTotal: Audited check requests by mode and result
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of audited check requests",
		},
		[]string{"mode", "result"},
	)

	// FieldsMasked: Sensitive values replaced by a masked rendition
	// Labels: source (header/query/record)
	FieldsMasked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_masked_total",
			Help:      "Total number of sensitive fields masked",
		},
		[]string{"source"},
	)

	// FieldsRemoved: Sensitive fields dropped from audit output or upstream requests
	// Labels: source (header/query/upstream)
	FieldsRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_removed_total",
			Help:      "Total number of sensitive fields removed",
		},
		[]string{"source"},
	)

	// ErrorsTotal: Errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by type",
		},
		[]string{"type"},
	)
)

// ============================================================================
// Gauges - Current state
// ============================================================================

var (
	// RequestsInFlight: Concurrent check requests being audited
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Number of check requests currently being audited",
		},
	)

	// SensitiveFields: Size of the active sensitive field list
	SensitiveFields = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensitive_fields",
			Help:      "Number of configured sensitive field names",
		},
	)
)

// ============================================================================
// Label constants
// ============================================================================

// Result labels for RequestDuration and RequestsTotal
const (
	ResultOK        = "ok"
	ResultMalformed = "malformed"
)

// Source labels for FieldsMasked and FieldsRemoved
const (
	SourceHeader   = "header"
	SourceQuery    = "query"
	SourceRecord   = "record"
	SourceUpstream = "upstream"
)

// Error type labels for ErrorsTotal
const (
	ErrorTypeTokenPeek       = "token_peek"
	ErrorTypeRecordMalformed = "record_malformed"
	ErrorTypeRecordType      = "record_type_mismatch"
)
