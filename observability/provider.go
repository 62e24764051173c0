package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/fittrack/component"
	"github.com/kbukum/fittrack/logger"
)

// Provider installs the OTLP tracer and meter providers on Start and
// flushes them on Stop.
type Provider struct {
	cfg         Config
	service     string
	version     string
	environment string
	log         *logger.Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var (
	_ component.Component   = (*Provider)(nil)
	_ component.Describable = (*Provider)(nil)
)

// NewProvider creates the observability component.
func NewProvider(cfg Config, service, version, environment string, log *logger.Logger) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		cfg:         cfg,
		service:     service,
		version:     version,
		environment: environment,
		log:         log.WithComponent("observability"),
	}
}

// Name implements component.Component.
func (p *Provider) Name() string { return "observability" }

// Start installs OTLP tracer and meter providers globally when enabled.
func (p *Provider) Start(ctx context.Context) error {
	if !p.cfg.Enabled {
		p.log.Debug("OTLP export disabled")
		return nil
	}

	res, err := newResource(p.service, p.version, p.environment)
	if err != nil {
		return fmt.Errorf("observability resource: %w", err)
	}
	tp, err := newTracerProvider(ctx, p.cfg, res)
	if err != nil {
		return fmt.Errorf("observability tracer: %w", err)
	}
	mp, err := newMeterProvider(ctx, p.cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("observability meter: %w", err)
	}

	p.tp, p.mp = tp, mp
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	p.log.Info("OTLP export enabled", logger.Fields(
		"endpoint", p.cfg.Endpoint, "sample_rate", p.cfg.SampleRate, "metric_interval", p.cfg.MetricInterval))
	return nil
}

// Stop flushes and shuts down the providers.
func (p *Provider) Stop(ctx context.Context) error {
	var errs []error
	if p.mp != nil {
		errs = append(errs, p.mp.Shutdown(ctx))
		p.mp = nil
	}
	if p.tp != nil {
		errs = append(errs, p.tp.Shutdown(ctx))
		p.tp = nil
	}
	return errors.Join(errs...)
}

// Health implements component.Component.
func (p *Provider) Health(_ context.Context) component.Health {
	return component.Health{Name: p.Name(), Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (p *Provider) Describe() component.Description {
	details := "disabled"
	if p.cfg.Enabled {
		details = fmt.Sprintf("otlp=%s sample=%g", p.cfg.Endpoint, p.cfg.SampleRate)
	}
	return component.Description{Name: "Observability", Type: "telemetry", Details: details}
}
