package config

import (
	"fmt"
	"time"

	"github.com/kbukum/flowkernel/observability"
	"github.com/kbukum/flowkernel/server"
	"github.com/kbukum/flowkernel/validation"
)

// ServiceName is the name configuration is loaded under.
const ServiceName = "flowkernel"

// Config is the complete flowkernel configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Engine        EngineConfig        `yaml:"engine" mapstructure:"engine"`
	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// EngineConfig configures pipeline evaluation.
type EngineConfig struct {
	// DefaultStrategy is used when a request names none.
	DefaultStrategy string `yaml:"default_strategy" mapstructure:"default_strategy" json:"default_strategy" validate:"oneof=pull push"`
	// ElementType selects the numeric element type: int (int64) or float
	// (float64).
	ElementType string `yaml:"element_type" mapstructure:"element_type" json:"element_type" validate:"oneof=int float"`
	// TablesFile seeds the table store at startup.
	TablesFile string `yaml:"tables_file" mapstructure:"tables_file" json:"tables_file"`
	// PipelineDirs are searched for named pipeline files.
	PipelineDirs []string `yaml:"pipeline_dirs" mapstructure:"pipeline_dirs" json:"pipeline_dirs"`
}

// ApplyDefaults fills unset fields.
func (c *EngineConfig) ApplyDefaults() {
	if c.DefaultStrategy == "" {
		c.DefaultStrategy = "pull"
	}
	if c.ElementType == "" {
		c.ElementType = "int"
	}
}

// Validate checks field values.
func (c *EngineConfig) Validate() error {
	return validation.Validate(c)
}

// ObservabilityConfig configures OpenTelemetry export.
type ObservabilityConfig struct {
	TracingEnabled  bool          `yaml:"tracing_enabled" mapstructure:"tracing_enabled" json:"tracing_enabled"`
	MetricsEnabled  bool          `yaml:"metrics_enabled" mapstructure:"metrics_enabled" json:"metrics_enabled"`
	Endpoint        string        `yaml:"endpoint" mapstructure:"endpoint" json:"endpoint" validate:"omitempty,hostname_port"`
	Insecure        bool          `yaml:"insecure" mapstructure:"insecure" json:"insecure"`
	SampleRate      float64       `yaml:"sample_rate" mapstructure:"sample_rate" json:"sample_rate" validate:"gte=0,lte=1"`
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval" json:"metrics_interval" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (c *ObservabilityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval == 0 {
		c.MetricsInterval = 15 * time.Second
	}
}

// Validate checks field values.
func (c *ObservabilityConfig) Validate() error {
	return validation.Validate(c)
}

// Setup converts the section into observability.Setup input.
func (c *ObservabilityConfig) Setup(svc ServiceConfig) observability.Config {
	return observability.Config{
		ServiceName:    svc.Name,
		ServiceVersion: svc.Version,
		Environment:    svc.Environment,
		TracingEnabled: c.TracingEnabled,
		MetricsEnabled: c.MetricsEnabled,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.SampleRate,
		Interval:       c.MetricsInterval,
	}
}

// ApplyDefaults fills unset fields in every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Engine.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("config.engine: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}

// Load reads the flowkernel configuration, applies defaults and validates
// it. path may be empty to use the standard search locations.
func Load(path string, opts ...LoaderOption) (*Config, error) {
	if path != "" {
		opts = append(opts, WithConfigFile(path))
	}
	var cfg Config
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
