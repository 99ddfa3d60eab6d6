// Package config loads service configuration from an optional YAML file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Transport names accepted by ServerConfig.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Environment variables that override file values.
const (
	EnvLogLevel   = "IMAGE_OPS_LOG_LEVEL"
	EnvLogFormat  = "IMAGE_OPS_LOG_FORMAT"
	EnvLogFile    = "IMAGE_OPS_LOG_FILE"
	EnvHTTPAddr   = "IMAGE_OPS_HTTP_ADDR"
	EnvTransport  = "IMAGE_OPS_TRANSPORT"
	EnvKMeansSeed = "IMAGE_OPS_KMEANS_SEED"
)

const defaultMaxBody = 32 << 20

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Defaults DefaultsConfig `yaml:"defaults"`
	KMeans   KMeansConfig   `yaml:"kmeans"`
}

// ServerConfig selects and configures the boundary transport.
type ServerConfig struct {
	Transport      string   `yaml:"transport"`
	HTTPAddr       string   `yaml:"http_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
}

// LogConfig controls the slog handler. An empty File logs to stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DefaultsConfig holds the parameter values used when a request omits them.
type DefaultsConfig struct {
	KMeansK         int     `yaml:"kmeans_k"`
	CannyThreshold1 float64 `yaml:"canny_threshold1"`
	CannyThreshold2 float64 `yaml:"canny_threshold2"`
	CLAHEClipLimit  float64 `yaml:"clahe_clip_limit"`
	CLAHETileGrid   int     `yaml:"clahe_tile_grid"`
	MedianKernel    int     `yaml:"median_kernel"`
}

// KMeansConfig tunes the clustering loop.
type KMeansConfig struct {
	Attempts      int     `yaml:"attempts"`
	MaxIterations int     `yaml:"max_iterations"`
	Epsilon       float64 `yaml:"epsilon"`
	Seed          uint64  `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Transport:      TransportStdio,
			HTTPAddr:       ":8080",
			AllowedOrigins: []string{"http://localhost:4200"},
			MaxBodyBytes:   defaultMaxBody,
		},
		Log: LogConfig{
			Level:      "INFO",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Defaults: DefaultsConfig{
			KMeansK:         2,
			CannyThreshold1: 50,
			CannyThreshold2: 100,
			CLAHEClipLimit:  3.0,
			CLAHETileGrid:   8,
			MedianKernel:    3,
		},
		KMeans: KMeansConfig{
			Attempts:      10,
			MaxIterations: 100,
			Epsilon:       0.2,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// non-empty) and then with environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.Log.File = v
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		c.Server.HTTPAddr = v
	}
	if v, ok := lookup(EnvTransport); ok && v != "" {
		c.Server.Transport = v
	}
	if v, ok := lookup(EnvKMeansSeed); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvKMeansSeed, v, err)
		}
		c.KMeans.Seed = seed
	}
	return nil
}

// Validate reports every setting that cannot be used.
func (c Config) Validate() error {
	var errs []error

	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Server.Transport))
	}
	if c.Server.Transport == TransportHTTP && c.Server.HTTPAddr == "" {
		errs = append(errs, errors.New("http transport needs http_addr"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if c.Defaults.CLAHETileGrid <= 0 {
		errs = append(errs, fmt.Errorf("clahe_tile_grid must be positive, got %d", c.Defaults.CLAHETileGrid))
	}
	if c.KMeans.Attempts <= 0 {
		errs = append(errs, fmt.Errorf("kmeans attempts must be positive, got %d", c.KMeans.Attempts))
	}
	if c.KMeans.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("kmeans max_iterations must be positive, got %d", c.KMeans.MaxIterations))
	}
	if c.KMeans.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("kmeans epsilon must not be negative, got %v", c.KMeans.Epsilon))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel converts a level name (DEBUG, INFO, WARN, ERROR; any case) to
// a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
