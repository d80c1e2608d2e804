package config

import (
	"strings"

	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
)

// MaskingSettings is the raw masking section as bound from file/env.
type MaskingSettings struct {
	SensitiveFields string `mapstructure:"sensitive_fields"`
	MaskToken       string `mapstructure:"mask_token"`
	MinLength       int    `mapstructure:"min_length"`
	KeepStart       bool   `mapstructure:"keep_start"`
	KeepStartCount  int    `mapstructure:"keep_start_count"`
	KeepEnd         bool   `mapstructure:"keep_end"`
	KeepEndCount    int    `mapstructure:"keep_end_count"`
}

// DefaultMaskingSettings returns the built-in masking defaults.
func DefaultMaskingSettings() MaskingSettings {
	return MaskingSettings{
		SensitiveFields: constants.DefaultSensitiveFields,
		MaskToken:       constants.DefaultMaskToken,
		MinLength:       constants.DefaultMinLength,
		KeepStart:       constants.DefaultKeepStart,
		KeepStartCount:  constants.DefaultKeepStartCount,
		KeepEnd:         constants.DefaultKeepEnd,
		KeepEndCount:    constants.DefaultKeepEndCount,
	}
}

// Masking holds the masking parameters and the parsed sensitive field list.
// It is read-only once built and safe to share between goroutines.
type Masking struct {
	settings        MaskingSettings
	sensitiveFields []string
}

// NewMasking builds a Masking from raw settings, splitting the field list once.
// Numeric values are taken as given; the masking engine copes with
// out-of-range counts.
func NewMasking(s MaskingSettings) *Masking {
	return &Masking{
		settings:        s,
		sensitiveFields: splitFields(s.SensitiveFields),
	}
}

// WithSensitiveFields returns a copy using a different raw field list.
func (m *Masking) WithSensitiveFields(raw string) *Masking {
	s := m.settings
	s.SensitiveFields = raw
	return NewMasking(s)
}

// splitFields splits on the literal separator without trimming whitespace.
// Empty elements in the middle are kept; trailing empty elements are dropped,
// so "Password," lists only Password.
func splitFields(raw string) []string {
	fields := strings.Split(raw, constants.FieldSeparator)
	end := len(fields)
	for end > 0 && fields[end-1] == "" {
		end--
	}
	return fields[:end:end]
}

func (m *Masking) SensitiveFieldsRaw() string { return m.settings.SensitiveFields }

// SensitiveFields returns a copy of the parsed field list, in configured order.
func (m *Masking) SensitiveFields() []string {
	out := make([]string, len(m.sensitiveFields))
	copy(out, m.sensitiveFields)
	return out
}

func (m *Masking) MaskToken() string   { return m.settings.MaskToken }
func (m *Masking) MinLength() int      { return m.settings.MinLength }
func (m *Masking) KeepStart() bool     { return m.settings.KeepStart }
func (m *Masking) KeepStartCount() int { return m.settings.KeepStartCount }
func (m *Masking) KeepEnd() bool       { return m.settings.KeepEnd }
func (m *Masking) KeepEndCount() int   { return m.settings.KeepEndCount }

// Settings returns the raw settings this Masking was built from.
func (m *Masking) Settings() MaskingSettings { return m.settings }
