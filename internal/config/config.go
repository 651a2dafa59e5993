// Package config reads process settings for the CLI and the HTTP server from
// the environment, optionally seeded by a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-configform/internal/loader"
	"github.com/goliatone/go-configform/pkg/output"
)

// Environment variable names.
const (
	EnvAddr        = "CONFIGFORM_ADDR"
	EnvSchema      = "CONFIGFORM_SCHEMA"
	EnvSchemaDir   = "CONFIGFORM_SCHEMA_DIR"
	EnvSchemaGlob  = "CONFIGFORM_SCHEMA_GLOB"
	EnvWatch       = "CONFIGFORM_WATCH"
	EnvHTTPTimeout = "CONFIGFORM_HTTP_TIMEOUT"
	EnvAllowHTTP   = "CONFIGFORM_ALLOW_HTTP"
	EnvLogLevel    = "CONFIGFORM_LOG_LEVEL"
	EnvOutputName  = "CONFIGFORM_OUTPUT_NAME"
	EnvTemplates   = "CONFIGFORM_TEMPLATES_DIR"
)

// DefaultEnvFile is read when present and no other file is requested.
const DefaultEnvFile = ".env"

// Config holds process settings.
type Config struct {
	Addr         string
	Schema       string
	SchemaDir    string
	SchemaGlob   string
	Watch        bool
	HTTPTimeout  time.Duration
	AllowHTTP    bool
	LogLevel     string
	OutputName   string
	TemplatesDir string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:        "127.0.0.1:8080",
		SchemaGlob:  loader.DefaultPattern,
		HTTPTimeout: 10 * time.Second,
		LogLevel:    "info",
		OutputName:  output.DefaultFilename,
	}
}

type options struct {
	envFile  string
	explicit bool
	lookup   func(string) (string, bool)
}

// Option configures Load.
type Option func(*options)

// WithEnvFile reads path instead of DefaultEnvFile. A missing explicit file
// is an error.
func WithEnvFile(path string) Option {
	return func(o *options) {
		if path != "" {
			o.envFile = path
			o.explicit = true
		}
	}
}

// WithLookup replaces os.LookupEnv, mainly for tests.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(o *options) {
		if lookup != nil {
			o.lookup = lookup
		}
	}
}

// Load resolves Config from the environment. Variables already set in the
// process take precedence over values from the env file.
func Load(opts ...Option) (Config, error) {
	o := options{envFile: DefaultEnvFile, lookup: os.LookupEnv}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	fileValues, err := godotenv.Read(o.envFile)
	if err != nil {
		if o.explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", o.envFile, err)
		}
		fileValues = nil
	}

	get := func(key string) (string, bool) {
		if value, ok := o.lookup(key); ok {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok
	}

	cfg := Default()
	if value, ok := get(EnvAddr); ok && value != "" {
		cfg.Addr = value
	}
	if value, ok := get(EnvSchema); ok {
		cfg.Schema = strings.TrimSpace(value)
	}
	if value, ok := get(EnvSchemaDir); ok {
		cfg.SchemaDir = strings.TrimSpace(value)
	}
	if value, ok := get(EnvSchemaGlob); ok && value != "" {
		cfg.SchemaGlob = value
	}
	if value, ok := get(EnvTemplates); ok {
		cfg.TemplatesDir = strings.TrimSpace(value)
	}
	if value, ok := get(EnvOutputName); ok && value != "" {
		cfg.OutputName = value
	}
	if value, ok := get(EnvLogLevel); ok && value != "" {
		if _, err := ParseLevel(value); err != nil {
			return Config{}, err
		}
		cfg.LogLevel = strings.ToLower(value)
	}
	if value, ok := get(EnvWatch); ok && value != "" {
		if cfg.Watch, err = strconv.ParseBool(value); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvWatch, err)
		}
	}
	if value, ok := get(EnvAllowHTTP); ok && value != "" {
		if cfg.AllowHTTP, err = strconv.ParseBool(value); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvAllowHTTP, err)
		}
	}
	if value, ok := get(EnvHTTPTimeout); ok && value != "" {
		if cfg.HTTPTimeout, err = time.ParseDuration(value); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvHTTPTimeout, err)
		}
	}
	return cfg, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", level)
	}
}

// Logger builds a text logger on w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
