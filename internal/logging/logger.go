// Package logging provides ECS-compatible structured logging for data-shield.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
)

const (
	// Log levels (re-exported for convenience)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps slog.Logger with ECS-compatible defaults.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level       slog.Level
	Output      io.Writer
	Environment string
}

// DefaultConfig returns the logger configuration used before settings load.
func DefaultConfig() *Config {
	return &Config{
		Level:       LevelInfo,
		Output:      os.Stdout,
		Environment: constants.DefaultEnvironment,
	}
}

// ParseLevel maps a log_level setting to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case constants.LogLevelDebug:
		return LevelDebug
	case constants.LogLevelWarn:
		return LevelWarn
	case constants.LogLevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// New creates a new ECS-compatible logger.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// ECS field mapping
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{Key: constants.ECSFieldTimestamp, Value: a.Value}
			case slog.LevelKey:
				return slog.Attr{Key: constants.ECSFieldLogLevel, Value: slog.StringValue(a.Value.String())}
			}
			return a
		},
	}

	handler := slog.NewJSONHandler(cfg.Output, opts)
	baseLogger := slog.New(handler)

	// Add ECS base fields
	ecsLogger := baseLogger.With(
		slog.Group("ecs",
			slog.String("version", constants.ECSVersion),
		),
		slog.Group("service",
			slog.String("name", constants.ServiceName),
			slog.String("version", constants.ServiceVersion),
			slog.String("environment", cfg.Environment),
		),
	)

	return &Logger{Logger: ecsLogger}
}

// WithContext returns a logger carrying the trace of the span in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return l.WithTrace(traceFromContext(ctx))
}

// WithRequest returns a logger with HTTP request metadata.
func (l *Logger) WithRequest(method, path, host string) *Logger {
	return &Logger{
		Logger: l.With(
			slog.Group("http",
				slog.String("request.method", method),
				slog.String("url.path", path),
			),
			slog.String("host.name", host),
		),
	}
}

// WithTrace returns a logger with trace context.
func (l *Logger) WithTrace(trace TraceInfo) *Logger {
	if trace.TraceID == "" {
		return l
	}
	attrs := []any{
		slog.String(constants.ECSFieldTraceID, trace.TraceID),
	}
	if trace.SpanID != "" {
		attrs = append(attrs, slog.String(constants.ECSFieldSpanID, trace.SpanID))
	}
	return &Logger{
		Logger: l.With(attrs...),
	}
}

// WithDuration returns a logger with duration information.
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return &Logger{
		Logger: l.With(
			slog.Group("event",
				slog.Float64("duration_ms", float64(d.Microseconds())/1000),
			),
		),
	}
}

// TraceInfo holds trace context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// AuditEntry describes one audited request. Header and query values must
// already be masked or filtered; the logger writes them verbatim.
type AuditEntry struct {
	Method       string
	Path         string
	Host         string
	Mode         string
	Headers      map[string]string
	Query        map[string]string
	Subject      string
	MaskedJTI    string
	MaskedFields int
	Duration     time.Duration
	Trace        TraceInfo
}

// Audit logs an audited request.
func (l *Logger) Audit(e AuditEntry) {
	attrs := []any{
		slog.String(constants.ECSFieldEventAction, constants.EventActionAudit),
		slog.String(constants.ECSFieldEventOutcome, constants.EventOutcomeSuccess),
		slog.String(constants.ECSFieldAuditMode, e.Mode),
		slog.Any(constants.ECSFieldAuditHeaders, e.Headers),
		slog.Int(constants.ECSFieldAuditMasked, e.MaskedFields),
	}
	if len(e.Query) > 0 {
		attrs = append(attrs, slog.Any(constants.ECSFieldAuditQuery, e.Query))
	}
	if e.Subject != "" {
		attrs = append(attrs, slog.String(constants.ECSFieldUserID, e.Subject))
	}
	if e.MaskedJTI != "" {
		attrs = append(attrs, slog.String(constants.ECSFieldTokenJTI, e.MaskedJTI))
	}

	l.WithTrace(e.Trace).
		WithRequest(e.Method, e.Path, e.Host).
		WithDuration(e.Duration).
		Info("Request audited", attrs...)
}

// AuditMalformed logs a check request that carried no HTTP attributes.
func (l *Logger) AuditMalformed(duration time.Duration, trace TraceInfo) {
	l.WithTrace(trace).
		WithDuration(duration).
		Warn("Request audit skipped",
			slog.String(constants.ECSFieldEventAction, constants.EventActionAudit),
			slog.String(constants.ECSFieldEventOutcome, constants.EventOutcomeFailure),
			slog.String(constants.ECSFieldEventReason, constants.ReasonMalformedRequest),
		)
}

// AuditRecord logs a masked flat JSON record as a nested object.
func (l *Logger) AuditRecord(masked string, exchange string) {
	l.Info("Record audited",
		slog.String(constants.ECSFieldEventAction, constants.EventActionAuditRecord),
		slog.String(constants.ECSFieldEventOutcome, constants.EventOutcomeSuccess),
		slog.String("mq.exchange", exchange),
		slog.Any(constants.ECSFieldAuditRecord, json.RawMessage(masked)),
	)
}

// AuditRecordRejected logs a record that could not be masked.
// The record body is never logged.
func (l *Logger) AuditRecordRejected(reason string, size int, err error) {
	attrs := []any{
		slog.String(constants.ECSFieldEventAction, constants.EventActionAuditRecord),
		slog.String(constants.ECSFieldEventOutcome, constants.EventOutcomeFailure),
		slog.String(constants.ECSFieldEventReason, reason),
		slog.Int("record.size", size),
	}
	if err != nil {
		attrs = append(attrs, slog.String(constants.ECSFieldErrorMessage, err.Error()))
	}
	l.Warn("Record rejected", attrs...)
}

// Global logger instance
var defaultLogger *Logger

// Init initializes the global logger.
func Init(cfg *Config) {
	defaultLogger = New(cfg)
}

// Default returns the global logger.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = New(nil)
	}
	return defaultLogger
}

// NewTestLogger creates a logger for testing (discards output).
func NewTestLogger() *Logger {
	cfg := &Config{
		Level:       LevelDebug,
		Output:      io.Discard,
		Environment: "test",
	}
	return New(cfg)
}
