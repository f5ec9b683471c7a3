package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Archive backends understood by the report source provider.
const (
	BackendFilesystem = "filesystem"
	BackendMinio      = "minio"
	BackendPostgres   = "postgres"
	BackendValkey     = "valkey"
	BackendMemory     = "memory"
)

// Trace exporters understood by the telemetry provider.
const (
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp_http"
	ExporterOTLPGRPC = "otlp_grpc"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware on refresh endpoints.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// DashboardConfig controls where reports come from and how pages render them.
type DashboardConfig struct {
	SourceURL          string        `yaml:"sourceUrl"`
	FetchTimeout       time.Duration `yaml:"fetchTimeout"`
	RenderWait         time.Duration `yaml:"renderWait"`
	Title              string        `yaml:"title"`
	StressDisplayLimit int           `yaml:"stressDisplayLimit"`
}

// ArchiveConfig controls the stored report API.
type ArchiveConfig struct {
	Enabled   bool           `yaml:"enabled"`
	Backend   string         `yaml:"backend"`
	Directory string         `yaml:"directory"`
	Minio     MinioConfig    `yaml:"minio"`
	Postgres  PostgresConfig `yaml:"postgres"`
	Valkey    ValkeyConfig   `yaml:"valkey"`
}

// MinioConfig contains S3-compatible bucket settings.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the valkey backend.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRate  float64 `yaml:"sampleRate"`
	ServiceName string  `yaml:"serviceName"`
	Environment string  `yaml:"environment"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_SOURCE_URL"); v != "" {
		cfg.Dashboard.SourceURL = v
	}
	if v := os.Getenv("DASHBOARD_FETCH_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.FetchTimeout = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_RENDER_WAIT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.RenderWait = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_TITLE"); v != "" {
		cfg.Dashboard.Title = v
	}
	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = parseBool(v)
	}
	if v := os.Getenv("ARCHIVE_BACKEND"); v != "" {
		cfg.Archive.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("ARCHIVE_DIRECTORY"); v != "" {
		cfg.Archive.Directory = v
	}
	if v := os.Getenv("ARCHIVE_MINIO_ENDPOINT"); v != "" {
		cfg.Archive.Minio.Endpoint = v
	}
	if v := os.Getenv("ARCHIVE_MINIO_ACCESS_KEY"); v != "" {
		cfg.Archive.Minio.AccessKey = v
	}
	if v := os.Getenv("ARCHIVE_MINIO_SECRET_KEY"); v != "" {
		cfg.Archive.Minio.SecretKey = v
	}
	if v := os.Getenv("ARCHIVE_MINIO_BUCKET"); v != "" {
		cfg.Archive.Minio.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_POSTGRES_DSN"); v != "" {
		cfg.Archive.Postgres.DSN = v
	}
	if v := os.Getenv("ARCHIVE_VALKEY_ADDR"); v != "" {
		cfg.Archive.Valkey.Addr = v
	}
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		cfg.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("OTEL_EXPORTER"); v != "" {
		cfg.Telemetry.Exporter = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.Endpoint = v
	}
	if v := os.Getenv("OTEL_SAMPLE_RATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Telemetry.SampleRate = parsed
		}
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Telemetry.Environment = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             5,
			},
		},
		Dashboard: DashboardConfig{
			SourceURL:          "http://127.0.0.1:8080",
			FetchTimeout:       15 * time.Second,
			RenderWait:         3 * time.Second,
			Title:              "Fleet Risk Dashboard",
			StressDisplayLimit: 48,
		},
		Archive: ArchiveConfig{
			Enabled:   true,
			Backend:   BackendFilesystem,
			Directory: "data/reports/weekly",
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Valkey: ValkeyConfig{
				Prefix: "weekly",
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Exporter:    ExporterStdout,
			SampleRate:  1,
			ServiceName: "fleet-dashboard",
			Environment: "development",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.Dashboard.SourceURL) == "" {
		return errors.New("dashboard.sourceUrl cannot be empty")
	}
	if c.Dashboard.FetchTimeout <= 0 {
		return errors.New("dashboard.fetchTimeout must be positive")
	}
	if c.Dashboard.RenderWait < 0 {
		return errors.New("dashboard.renderWait cannot be negative")
	}
	if c.Dashboard.StressDisplayLimit < 0 {
		return errors.New("dashboard.stressDisplayLimit cannot be negative")
	}
	if c.Archive.Enabled {
		switch c.Archive.Backend {
		case BackendFilesystem:
			if strings.TrimSpace(c.Archive.Directory) == "" {
				return errors.New("archive.directory cannot be empty for the filesystem backend")
			}
		case BackendMinio, BackendPostgres, BackendValkey, BackendMemory:
		default:
			return fmt.Errorf("archive.backend %q is not supported", c.Archive.Backend)
		}
	}
	if c.Telemetry.Enabled {
		switch c.Telemetry.Exporter {
		case ExporterStdout, ExporterOTLPHTTP, ExporterOTLPGRPC:
		default:
			return fmt.Errorf("telemetry.exporter %q is not supported", c.Telemetry.Exporter)
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			return errors.New("telemetry.sampleRate must be between 0 and 1")
		}
		if strings.TrimSpace(c.Telemetry.ServiceName) == "" {
			return errors.New("telemetry.serviceName cannot be empty")
		}
	}
	return nil
}
