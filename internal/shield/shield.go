// Package shield masks or strips sensitive fields from header/query maps and
// flat JSON objects using one shared masking configuration.
//
// A Shield holds no mutable state and is safe for concurrent use.
package shield

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/eco2-team/backend/domains/data-shield/internal/config"
	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
)

type Shield struct {
	cfg       *config.Masking
	sensitive map[string]struct{}
}

// New binds a Shield to cfg for its whole lifetime.
func New(cfg *config.Masking) (*Shield, error) {
	if cfg == nil {
		return nil, errors.New(constants.ErrConfigRequired)
	}
	return &Shield{cfg: cfg, sensitive: lo.Keyify(cfg.SensitiveFields())}, nil
}

// Config returns the masking configuration the Shield was built with.
func (s *Shield) Config() *config.Masking {
	return s.cfg
}

// IsSensitive reports whether key is one of the configured sensitive fields.
// Matching is exact and case-sensitive.
func (s *Shield) IsSensitive(key string) bool {
	_, ok := s.sensitive[key]
	return ok
}

// FilterSensitive returns a copy of fields without the sensitive keys.
func (s *Shield) FilterSensitive(fields map[string]string) map[string]string {
	return lo.OmitBy(fields, func(k, _ string) bool {
		return s.IsSensitive(k)
	})
}

// MaskSensitive returns a copy of fields where every sensitive value is masked.
func (s *Shield) MaskSensitive(fields map[string]string) map[string]string {
	return lo.MapValues(fields, func(v, k string) string {
		if s.IsSensitive(k) {
			return s.MaskValue(v)
		}
		return v
	})
}

// Options returns the configured masking parameters.
func (s *Shield) Options() Options {
	return Options{
		MinLength:      s.cfg.MinLength(),
		KeepStart:      s.cfg.KeepStart(),
		KeepStartCount: s.cfg.KeepStartCount(),
		KeepEnd:        s.cfg.KeepEnd(),
		KeepEndCount:   s.cfg.KeepEndCount(),
		MaskToken:      s.cfg.MaskToken(),
	}
}

// MaskValue masks value with the configured parameters.
func (s *Shield) MaskValue(value string) string {
	return Mask(value, s.Options())
}

// MaskNullable masks *value, or returns "" when value is nil.
func (s *Shield) MaskNullable(value *string) string {
	return s.MaskValue(lo.FromPtr(value))
}

// MaskValues masks every element, preserving order. A nil slice gives an empty one.
func (s *Shield) MaskValues(values []string) []string {
	return lo.Map(values, func(v string, _ int) string {
		return s.MaskValue(v)
	})
}

// DescribeConfig renders the masking parameters for diagnostics.
func (s *Shield) DescribeConfig() string {
	return fmt.Sprintf(`Masking configuration summary:
Minimum length to mask: %d
Keep start: %s (%d characters)
Keep end: %s (%d characters)
Mask token: '%s'`,
		s.cfg.MinLength(),
		yesNo(s.cfg.KeepStart()), s.cfg.KeepStartCount(),
		yesNo(s.cfg.KeepEnd()), s.cfg.KeepEndCount(),
		s.cfg.MaskToken(),
	)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
