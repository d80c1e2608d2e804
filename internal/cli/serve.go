package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authv3 "github.com/envoyproxy/go-control-plane/envoy/service/auth/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/eco2-team/backend/domains/data-shield/internal/config"
	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
	"github.com/eco2-team/backend/domains/data-shield/internal/logging"
	"github.com/eco2-team/backend/domains/data-shield/internal/metrics"
	"github.com/eco2-team/backend/domains/data-shield/internal/mq"
	"github.com/eco2-team/backend/domains/data-shield/internal/server"
	"github.com/eco2-team/backend/domains/data-shield/internal/shield"
	"github.com/eco2-team/backend/domains/data-shield/internal/store"
	"github.com/eco2-team/backend/domains/data-shield/internal/tracing"
)

const (
	flagGRPCPort      = "grpc-port"
	flagMetricsPort   = "metrics-port"
	flagAuditMode     = "audit-mode"
	flagStripUpstream = "strip-upstream"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Envoy ext_authz audit server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd,
				config.FlagBinding{Key: constants.KeyGRPCPort, Flag: flagGRPCPort},
				config.FlagBinding{Key: constants.KeyMetricsPort, Flag: flagMetricsPort},
				config.FlagBinding{Key: constants.KeyAuditMode, Flag: flagAuditMode},
				config.FlagBinding{Key: constants.KeyStripUpstream, Flag: flagStripUpstream},
			)
			if err != nil {
				return err
			}

			logging.Init(loggingConfig(cfg))
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logging.Default())
		},
	}

	f := cmd.Flags()
	f.Int(flagGRPCPort, constants.DefaultGRPCPort, "gRPC listen port")
	f.Int(flagMetricsPort, constants.DefaultMetricsPort, "metrics and health listen port")
	f.String(flagAuditMode, constants.AuditModeMask, "audit mode: mask or filter")
	f.Bool(flagStripUpstream, false, "ask Envoy to drop sensitive headers before forwarding")
	return cmd
}

// runServe starts every server and blocks until ctx is done or a server fails.
func runServe(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	tp, err := tracing.Init(ctx, tracingConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	masking, err := loadMasking(ctx, cfg, logger)
	if err != nil {
		return err
	}
	sh, err := shield.New(masking)
	if err != nil {
		return err
	}
	metrics.SensitiveFields.Set(float64(len(masking.SensitiveFields())))

	auditServer, err := server.New(sh, logger, server.Options{
		Mode:          cfg.AuditMode,
		StripUpstream: cfg.StripUpstream,
	})
	if err != nil {
		return fmt.Errorf("failed to create audit server: %w", err)
	}

	errCh := make(chan error, 2)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           newMetricsMux(),
		ReadHeaderTimeout: constants.InitTimeout,
	}
	go func() {
		logger.Info("Starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	authv3.RegisterAuthorizationServer(grpcServer, auditServer)

	go func() {
		logger.Info("Starting audit gRPC server",
			"port", cfg.GRPCPort,
			"audit.mode", cfg.AuditMode,
			"strip_upstream", cfg.StripUpstream,
		)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	if cfg.AMQPURL != "" {
		consumer, err := mq.NewAuditConsumer(cfg.AMQPURL, cfg.AuditExchange, sh, logger)
		if err != nil {
			return err
		}
		consumer.Start()
		defer consumer.Stop()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errCh:
		logger.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("Metrics server shutdown failed", "error", shutdownErr)
	}

	logger.Info("Server stopped")
	return err
}

func loggingConfig(cfg *config.Config) *logging.Config {
	return &logging.Config{
		Level:       logging.ParseLevel(cfg.LogLevel),
		Output:      os.Stdout,
		Environment: cfg.Environment,
	}
}

func tracingConfig(cfg *config.Config) *tracing.Config {
	return &tracing.Config{
		ServiceName:    constants.ServiceName,
		ServiceVersion: constants.ServiceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
		Enabled:        cfg.Tracing.Enabled,
	}
}

// loadMasking returns the configured masking settings, with the field list
// replaced by the one stored in Redis when a Redis URL is set and the key exists.
func loadMasking(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*config.Masking, error) {
	masking := cfg.MaskingConfig()
	if cfg.RedisURL == "" {
		return masking, nil
	}

	initCtx, cancel := context.WithTimeout(ctx, constants.InitTimeout)
	defer cancel()

	poolOpts := &store.PoolOptions{
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
		PoolTimeout:  time.Duration(cfg.RedisPoolTimeoutMs) * time.Millisecond,
		ReadTimeout:  time.Duration(cfg.RedisReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.RedisWriteTimeoutMs) * time.Millisecond,
	}
	st, err := store.New(initCtx, cfg.RedisURL, poolOpts)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return fieldsFromStore(initCtx, st, cfg.RedisFieldsKey, masking, logger)
}

// fieldSource is the part of store.Store used at startup.
type fieldSource interface {
	SensitiveFields(ctx context.Context, key string) (string, bool, error)
}

func fieldsFromStore(ctx context.Context, src fieldSource, key string, masking *config.Masking, logger *logging.Logger) (*config.Masking, error) {
	raw, found, err := src.SensitiveFields(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Info("Sensitive field list not in Redis, using configured list", "redis.key", key)
		return masking, nil
	}
	logger.Info("Sensitive field list loaded from Redis", "redis.key", key)
	return masking.WithSensitiveFields(raw), nil
}

func newMetricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(constants.PathMetrics, promhttp.Handler())
	mux.HandleFunc(constants.PathHealth, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(constants.HealthOK))
	})
	mux.HandleFunc(constants.PathReady, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(constants.HealthOK))
	})
	return mux
}
