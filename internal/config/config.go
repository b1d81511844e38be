// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by every entrypoint.
type Config struct {
	ProjectID     string `env:"PROJECT_ID,required,notEmpty"`
	Bucket        string `env:"DOCUMENT_BUCKET,required,notEmpty"`
	Collection    string `env:"FIRESTORE_COLLECTION" envDefault:"projects"`
	DocumentField string `env:"DOCUMENT_FIELD" envDefault:"documents"`
	StagingDir    string `env:"STAGING_DIR"`
	ReportOrder   string `env:"REPORT_ORDER" envDefault:"id"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"https://storage.googleapis.com"`
	Port          string `env:"PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Telemetry     Telemetry
}

// Telemetry configures trace export. Export is off without an endpoint.
type Telemetry struct {
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Load parses and validates the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.ReportOrder {
	case "id", "title":
	default:
		return fmt.Errorf("REPORT_ORDER must be \"id\" or \"title\", got %q", c.ReportOrder)
	}
	if strings.TrimSpace(c.Collection) == "" {
		return fmt.Errorf("FIRESTORE_COLLECTION cannot be blank")
	}
	if strings.TrimSpace(c.DocumentField) == "" {
		return fmt.Errorf("DOCUMENT_FIELD cannot be blank")
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	return nil
}

// Addr is the listen address for standalone servers.
func (c *Config) Addr() string {
	return ":" + c.Port
}
