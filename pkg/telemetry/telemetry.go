// Package telemetry provides OpenTelemetry integration for the application.
// Traces go to an OTLP collector, metrics are exposed for Prometheus scraping.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/pkg/logger"
)

// Default configuration values
const (
	defaultExporterTimeout = 10 * time.Second
	defaultHTTPTimeout     = 10 * time.Second
	defaultPrometheusHost  = "127.0.0.1"
	defaultPrometheusPort  = 9464
)

// Config holds the telemetry configuration
type Config struct {
	// Enabled enables/disables telemetry
	Enabled bool `yaml:"enabled"`
	// ServiceName is the name of the service for telemetry
	ServiceName string `yaml:"service_name"`
	// OTLP configuration for trace export
	OTLP OTLPConfig `yaml:"otlp"`
	// Prometheus configuration for metrics export
	Prometheus PrometheusConfig `yaml:"prometheus"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled bool `yaml:"enabled"`
	// Endpoint is the OTLP collector endpoint (e.g., "localhost:4317")
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS for the connection
	Insecure bool `yaml:"insecure"`
}

// PrometheusConfig holds Prometheus metrics configuration
type PrometheusConfig struct {
	Enabled bool `yaml:"enabled"`
	// Host is the bind address of the metrics listener; loopback by default
	Host string `yaml:"host"`
	// Port is the port for the metrics HTTP server
	Port int `yaml:"port"`
}

// Address returns the metrics listener address.
func (c PrometheusConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Telemetry manages OpenTelemetry providers and exporters
type Telemetry struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metricsServer  *http.Server
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = consts.ServiceName
	}
	if c.Prometheus.Host == "" {
		c.Prometheus.Host = defaultPrometheusHost
	}
	if c.Prometheus.Port == 0 {
		c.Prometheus.Port = defaultPrometheusPort
	}
}

// New creates a new Telemetry instance with the given configuration.
// A disabled configuration yields an inert instance whose Shutdown is a no-op;
// the global otel providers then stay no-op as well.
func New(cfg Config) (*Telemetry, error) {
	if !cfg.Enabled {
		logger.Debug("Telemetry is disabled")
		return &Telemetry{config: cfg}, nil
	}
	cfg.applyDefaults()

	t := &Telemetry{config: cfg}

	// resource.New avoids schema URL conflicts between semconv versions
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(consts.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := t.initTracerProvider(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	if err := t.initMeterProvider(res); err != nil {
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Telemetry initialized",
		zap.String("service_name", cfg.ServiceName),
		zap.Bool("otlp_enabled", cfg.OTLP.Enabled),
		zap.Bool("prometheus_enabled", cfg.Prometheus.Enabled),
	)
	return t, nil
}

func (t *Telemetry) initTracerProvider(res *resource.Resource) error {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if t.config.OTLP.Enabled && t.config.OTLP.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), defaultExporterTimeout)
		defer cancel()

		exporterOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(t.config.OTLP.Endpoint),
		}
		if t.config.OTLP.Insecure {
			exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
		}

		exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		logger.Info("OTLP trace exporter initialized", zap.String("endpoint", t.config.OTLP.Endpoint))
	}

	t.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(t.tracerProvider)
	return nil
}

func (t *Telemetry) initMeterProvider(res *resource.Resource) error {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if t.config.Prometheus.Enabled {
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(exporter))
		t.startMetricsServer()
	}

	t.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(t.meterProvider)
	return nil
}

func (t *Telemetry) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	t.metricsServer = &http.Server{
		Addr:         t.config.Prometheus.Address(),
		Handler:      mux,
		ReadTimeout:  defaultHTTPTimeout,
		WriteTimeout: defaultHTTPTimeout,
	}

	go func() {
		logger.Info("Starting Prometheus metrics server", zap.String("addr", t.metricsServer.Addr))
		if err := t.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Prometheus metrics server error", zap.Error(err))
		}
	}()
}

// Shutdown flushes and stops all telemetry providers. Failures are logged,
// never returned, so shutdown of the rest of the application proceeds.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if !t.config.Enabled {
		return nil
	}

	logger.Info("Shutting down telemetry")

	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown meter provider", zap.Error(err))
		}
	}
	if t.metricsServer != nil {
		if err := t.metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown metrics server", zap.Error(err))
		}
	}
	return nil
}

// IsEnabled returns whether telemetry is enabled
func (t *Telemetry) IsEnabled() bool {
	return t.config.Enabled
}
