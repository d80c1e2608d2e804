package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	corev3 "github.com/envoyproxy/go-control-plane/envoy/config/core/v3"
	authv3 "github.com/envoyproxy/go-control-plane/envoy/service/auth/v3"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genproto/googleapis/rpc/code"
	"google.golang.org/genproto/googleapis/rpc/status"

	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
	"github.com/eco2-team/backend/domains/data-shield/internal/jwt"
	"github.com/eco2-team/backend/domains/data-shield/internal/logging"
	"github.com/eco2-team/backend/domains/data-shield/internal/metrics"
	"github.com/eco2-team/backend/domains/data-shield/internal/shield"
	"github.com/eco2-team/backend/domains/data-shield/internal/tracing"
)

const spanCheck = "ext_authz.audit"

// Options controls what the audit server does with sensitive fields.
type Options struct {
	// Mode is constants.AuditModeMask or constants.AuditModeFilter.
	Mode string
	// StripUpstream asks Envoy to drop sensitive headers before forwarding.
	StripUpstream bool
}

// AuditServer implements the Envoy ext_authz Check API as an audit hook.
// Every request is allowed; its headers and query parameters are logged with
// sensitive values masked or removed.
//
// Header names are case-insensitive, so headers are matched against the
// canonical form of each configured field. Query parameters keep the
// engine's exact matching.
type AuditServer struct {
	shield           *shield.Shield
	logger           *logging.Logger
	opts             Options
	sensitiveHeaders map[string]struct{}
}

func New(sh *shield.Shield, logger *logging.Logger, opts Options) (*AuditServer, error) {
	if sh == nil {
		return nil, errors.New(constants.ErrShieldRequired)
	}
	if logger == nil {
		return nil, errors.New(constants.ErrLoggerRequired)
	}
	switch opts.Mode {
	case constants.AuditModeMask, constants.AuditModeFilter:
	default:
		return nil, fmt.Errorf(constants.ErrInvalidAuditMode, opts.Mode)
	}
	headers := lo.Map(sh.Config().SensitiveFields(), func(f string, _ int) string {
		return http.CanonicalHeaderKey(f)
	})
	return &AuditServer{
		shield:           sh,
		logger:           logger,
		opts:             opts,
		sensitiveHeaders: lo.Keyify(headers),
	}, nil
}

// Check audits the request and always allows it.
func (s *AuditServer) Check(ctx context.Context, req *authv3.CheckRequest) (*authv3.CheckResponse, error) {
	start := time.Now()
	metrics.RequestsInFlight.Inc()
	defer metrics.RequestsInFlight.Dec()

	ctx, span := tracing.StartSpan(ctx, spanCheck, attribute.String("audit.mode", s.opts.Mode))
	defer span.End()

	recordMetrics := func(result string) {
		metrics.RequestDuration.WithLabelValues(s.opts.Mode, result).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(s.opts.Mode, result).Inc()
	}

	httpReq := req.GetAttributes().GetRequest().GetHttp()
	if httpReq == nil {
		s.logger.WithContext(ctx).AuditMalformed(time.Since(start), logging.TraceInfo{})
		recordMetrics(metrics.ResultMalformed)
		return allowResponse(nil), nil
	}

	headers := canonicalHeaders(httpReq.GetHeaders())
	path, query := splitQuery(httpReq.GetPath())

	sensitiveHeaders := lo.CountBy(lo.Keys(headers), s.isSensitiveHeader)
	sensitiveQuery := lo.CountBy(lo.Keys(query), s.shield.IsSensitive)

	var auditHeaders, auditQuery map[string]string
	if s.opts.Mode == constants.AuditModeFilter {
		auditHeaders = s.filterHeaders(headers)
		auditQuery = s.shield.FilterSensitive(query)
		metrics.FieldsRemoved.WithLabelValues(metrics.SourceHeader).Add(float64(sensitiveHeaders))
		metrics.FieldsRemoved.WithLabelValues(metrics.SourceQuery).Add(float64(sensitiveQuery))
	} else {
		auditHeaders = s.maskHeaders(headers)
		auditQuery = s.shield.MaskSensitive(query)
		metrics.FieldsMasked.WithLabelValues(metrics.SourceHeader).Add(float64(sensitiveHeaders))
		metrics.FieldsMasked.WithLabelValues(metrics.SourceQuery).Add(float64(sensitiveQuery))
	}
	tracing.AddEvent(ctx, "fields.sensitive",
		attribute.Int("headers", sensitiveHeaders),
		attribute.Int("query", sensitiveQuery),
	)

	identity := s.identify(headers[constants.HeaderAuthorization])

	s.logger.WithContext(ctx).Audit(logging.AuditEntry{
		Method:       httpReq.GetMethod(),
		Path:         path,
		Host:         httpReq.GetHost(),
		Mode:         s.opts.Mode,
		Headers:      auditHeaders,
		Query:        auditQuery,
		Subject:      identity.Subject,
		MaskedJTI:    identity.JTI,
		MaskedFields: sensitiveHeaders + sensitiveQuery,
		Duration:     time.Since(start),
	})

	var remove []string
	if s.opts.StripUpstream {
		remove = s.upstreamRemovals(httpReq.GetHeaders())
		metrics.FieldsRemoved.WithLabelValues(metrics.SourceUpstream).Add(float64(len(remove)))
	}

	recordMetrics(metrics.ResultOK)
	return allowResponse(remove), nil
}

// identify reads the masked token subject and jti for log correlation.
func (s *AuditServer) identify(authHeader string) jwt.Identity {
	if authHeader == "" {
		return jwt.Identity{}
	}
	id, err := jwt.Peek(authHeader)
	if err != nil {
		if !errors.Is(err, jwt.ErrNoBearer) {
			metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeTokenPeek).Inc()
		}
		return jwt.Identity{}
	}
	if id.Subject != "" {
		id.Subject = s.shield.MaskValue(id.Subject)
	}
	if id.JTI != "" {
		id.JTI = s.shield.MaskValue(id.JTI)
	}
	return id
}

// isSensitiveHeader matches name in any letter case.
func (s *AuditServer) isSensitiveHeader(name string) bool {
	_, ok := s.sensitiveHeaders[http.CanonicalHeaderKey(name)]
	return ok
}

func (s *AuditServer) filterHeaders(headers map[string]string) map[string]string {
	return lo.OmitBy(headers, func(name, _ string) bool {
		return s.isSensitiveHeader(name)
	})
}

func (s *AuditServer) maskHeaders(headers map[string]string) map[string]string {
	return lo.MapValues(headers, func(v, name string) string {
		if s.isSensitiveHeader(name) {
			return s.shield.MaskValue(v)
		}
		return v
	})
}

// upstreamRemovals lists the received header names that are sensitive,
// sorted for a stable response.
func (s *AuditServer) upstreamRemovals(raw map[string]string) []string {
	remove := lo.Filter(lo.Keys(raw), func(name string, _ int) bool {
		return s.isSensitiveHeader(name)
	})
	sort.Strings(remove)
	return remove
}

// canonicalHeaders re-keys Envoy's lower-cased headers to canonical MIME form
// (authorization -> Authorization, x-api-key -> X-Api-Key). Pseudo-headers
// such as :authority are dropped.
func canonicalHeaders(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for name, value := range raw {
		if strings.HasPrefix(name, ":") {
			continue
		}
		out[http.CanonicalHeaderKey(name)] = value
	}
	return out
}

// splitQuery separates the path from its query string. Repeated parameters
// are joined with a comma.
func splitQuery(rawPath string) (string, map[string]string) {
	path, rawQuery, found := strings.Cut(rawPath, "?")
	query := make(map[string]string)
	if !found || rawQuery == "" {
		return path, query
	}
	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(rawQuery)
	for k, v := range values {
		query[k] = strings.Join(v, ",")
	}
	return path, query
}

func allowResponse(headersToRemove []string) *authv3.CheckResponse {
	return &authv3.CheckResponse{
		Status: &status.Status{
			Code: int32(code.Code_OK),
		},
		HttpResponse: &authv3.CheckResponse_OkResponse{
			OkResponse: &authv3.OkHttpResponse{
				HeadersToRemove: headersToRemove,
				ResponseHeadersToAdd: []*corev3.HeaderValueOption{
					{
						Header: &corev3.HeaderValue{
							Key:   "x-data-shield",
							Value: "audited",
						},
					},
				},
			},
		},
	}
}
