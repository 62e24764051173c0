package observability

import (
	"fmt"
	"time"
)

// Config enables OTLP export of traces and metrics.
type Config struct {
	// Enabled turns on OTLP export. When false the global no-op providers
	// stay in place and instrumentation costs nothing.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Endpoint is the OTLP HTTP collector host:port (default: localhost:4318).
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`

	// SampleRate is the trace sampling ratio, 0.0 to 1.0 (default: 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`

	// MetricInterval is the metric export interval (default: "15s").
	MetricInterval string `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == "" {
		c.MetricInterval = "15s"
	}
}

// Validate checks ranges and durations.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be between 0 and 1 (got: %g)", c.SampleRate)
	}
	if _, err := time.ParseDuration(c.MetricInterval); err != nil {
		return fmt.Errorf("observability.metric_interval: invalid duration %q: %w", c.MetricInterval, err)
	}
	return nil
}
