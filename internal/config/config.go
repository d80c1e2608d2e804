package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
)

// Config is the full service configuration.
type Config struct {
	Masking MaskingSettings `mapstructure:"masking"`
	Tracing TracingSettings `mapstructure:"tracing"`

	// Logging
	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"environment"`

	// Server
	GRPCPort      int    `mapstructure:"grpc_port"`
	MetricsPort   int    `mapstructure:"metrics_port"`
	AuditMode     string `mapstructure:"audit_mode"`
	StripUpstream bool   `mapstructure:"strip_upstream"`

	// Redis field source
	RedisURL       string `mapstructure:"redis_url"`
	RedisFieldsKey string `mapstructure:"redis_fields_key"`

	// Redis Pool Settings
	RedisPoolSize       int `mapstructure:"redis_pool_size"`
	RedisMinIdleConns   int `mapstructure:"redis_min_idle_conns"`
	RedisPoolTimeoutMs  int `mapstructure:"redis_pool_timeout_ms"`
	RedisReadTimeoutMs  int `mapstructure:"redis_read_timeout_ms"`
	RedisWriteTimeoutMs int `mapstructure:"redis_write_timeout_ms"`

	// RabbitMQ audit consumer
	AMQPURL       string `mapstructure:"amqp_url"`
	AuditExchange string `mapstructure:"audit_exchange"`
}

// TracingSettings configures span export to an OTLP collector.
type TracingSettings struct {
	Enabled      bool    `mapstructure:"enabled"`
	Endpoint     string  `mapstructure:"endpoint"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// NewViper returns a viper instance with defaults and env binding set up.
// Env keys are DATASHIELD_ + upper-cased key with dots turned into underscores.
func NewViper() *viper.Viper {
	v := viper.New()

	d := DefaultMaskingSettings()
	v.SetDefault(constants.KeyMaskingSensitiveFields, d.SensitiveFields)
	v.SetDefault(constants.KeyMaskingMaskToken, d.MaskToken)
	v.SetDefault(constants.KeyMaskingMinLength, d.MinLength)
	v.SetDefault(constants.KeyMaskingKeepStart, d.KeepStart)
	v.SetDefault(constants.KeyMaskingKeepStartCount, d.KeepStartCount)
	v.SetDefault(constants.KeyMaskingKeepEnd, d.KeepEnd)
	v.SetDefault(constants.KeyMaskingKeepEndCount, d.KeepEndCount)

	v.SetDefault(constants.KeyLogLevel, constants.LogLevelInfo)
	v.SetDefault(constants.KeyEnvironment, constants.DefaultEnvironment)
	v.SetDefault(constants.KeyTracingEnabled, false)
	v.SetDefault(constants.KeyTracingEndpoint, constants.DefaultTracingEndpoint)
	v.SetDefault(constants.KeyTracingSamplingRate, constants.DefaultSamplingRate)

	v.SetDefault(constants.KeyGRPCPort, constants.DefaultGRPCPort)
	v.SetDefault(constants.KeyMetricsPort, constants.DefaultMetricsPort)
	v.SetDefault(constants.KeyAuditMode, constants.AuditModeMask)
	v.SetDefault(constants.KeyStripUpstream, false)
	v.SetDefault(constants.KeyRedisURL, "")
	v.SetDefault(constants.KeyRedisFieldsKey, constants.DefaultRedisFieldsKey)
	v.SetDefault(constants.KeyRedisPoolSize, constants.DefaultRedisPoolSize)
	v.SetDefault(constants.KeyRedisMinIdleConns, constants.DefaultRedisMinIdleConns)
	v.SetDefault(constants.KeyRedisPoolTimeoutMs, constants.DefaultRedisPoolTimeoutMs)
	v.SetDefault(constants.KeyRedisReadTimeoutMs, constants.DefaultRedisReadTimeoutMs)
	v.SetDefault(constants.KeyRedisWriteTimeoutMs, constants.DefaultRedisWriteTimeoutMs)
	v.SetDefault(constants.KeyAMQPURL, "")
	v.SetDefault(constants.KeyAuditExchange, constants.DefaultAuditExchange)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// An empty DATASHIELD_MASKING_SENSITIVE_FIELDS must clear the list.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	return v
}

// FlagBinding ties a config key to a command-line flag name.
type FlagBinding struct {
	Key  string
	Flag string
}

// Load reads the optional config file, then the environment, and decodes the result.
// A .env file in the working directory is applied first when it exists.
func Load(path string) (*Config, error) {
	return LoadWithFlags(path, nil)
}

// LoadWithFlags is Load with command-line flags layered on top. A bound flag
// only overrides the other sources when it was set explicitly.
func LoadWithFlags(path string, flags *pflag.FlagSet, bindings ...FlagBinding) (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load(constants.DotEnvFile)

	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf(constants.ErrConfigRead, err)
		}
	}
	if flags != nil {
		for _, b := range bindings {
			f := flags.Lookup(b.Flag)
			if f == nil {
				return nil, fmt.Errorf(constants.ErrUnknownFlag, b.Flag)
			}
			if err := v.BindPFlag(b.Key, f); err != nil {
				return nil, fmt.Errorf(constants.ErrFlagBind, err)
			}
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf(constants.ErrConfigDecode, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the service settings. Masking numbers are deliberately not checked.
func (c *Config) Validate() error {
	switch c.AuditMode {
	case constants.AuditModeMask, constants.AuditModeFilter:
	default:
		return fmt.Errorf(constants.ErrInvalidAuditMode, c.AuditMode)
	}
	if c.GRPCPort <= 0 || c.MetricsPort <= 0 {
		return errors.New(constants.ErrInvalidPort)
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf(constants.ErrSamplingRate, c.Tracing.SamplingRate)
	}
	return nil
}

// MaskingConfig derives the immutable masking configuration.
func (c *Config) MaskingConfig() *Masking {
	return NewMasking(c.Masking)
}
