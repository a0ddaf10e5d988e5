package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvStore              = "CIRCULATION_STORE"
	EnvDBAdapter          = "CIRCULATION_DB_ADAPTER"
	EnvSQLitePath         = "CIRCULATION_SQLITE_PATH"
	EnvSweepInterval      = "CIRCULATION_SWEEP_INTERVAL"
	EnvSweepTimeout       = "CIRCULATION_SWEEP_TIMEOUT"
	EnvLogLevel           = "CIRCULATION_LOG_LEVEL"
	EnvOTELEnabled        = "CIRCULATION_OTEL_ENABLED"
	EnvOTLPTraceEndpoint  = "CIRCULATION_OTLP_TRACE_ENDPOINT"
	EnvOTLPMetricEndpoint = "CIRCULATION_OTLP_METRIC_ENDPOINT"

	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"

	AdapterPGX  = "pgx"
	AdapterSQL  = "sql"
	AdapterSQLX = "sqlx"

	defaultSQLitePath         = "circulation.db"
	defaultSweepInterval      = time.Hour
	defaultSweepTimeout       = 5 * time.Minute
	defaultOTLPTraceEndpoint  = "localhost:4317"
	defaultOTLPMetricEndpoint = "localhost:4317"
)

var (
	// ErrUnsupportedStore is returned for an unknown CIRCULATION_STORE value.
	ErrUnsupportedStore = errors.New("unsupported store")

	// ErrUnsupportedAdapter is returned for an unknown CIRCULATION_DB_ADAPTER value.
	ErrUnsupportedAdapter = errors.New("unsupported database adapter")

	// ErrInvalidSetting is returned when a setting cannot be parsed.
	ErrInvalidSetting = errors.New("invalid setting")
)

// AppConfig holds the settings of the circulation service.
type AppConfig struct {
	Store              string
	DBAdapter          string
	PostgresDSN        string
	SQLitePath         string
	SweepInterval      time.Duration
	SweepTimeout       time.Duration
	LogLevel           slog.Level
	OTELEnabled        bool
	OTLPTraceEndpoint  string
	OTLPMetricEndpoint string
}

// DefaultAppConfig returns the settings used when nothing is configured.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Store:              StorePostgres,
		DBAdapter:          AdapterPGX,
		PostgresDSN:        defaultPostgresDSN,
		SQLitePath:         defaultSQLitePath,
		SweepInterval:      defaultSweepInterval,
		SweepTimeout:       defaultSweepTimeout,
		LogLevel:           slog.LevelInfo,
		OTLPTraceEndpoint:  defaultOTLPTraceEndpoint,
		OTLPMetricEndpoint: defaultOTLPMetricEndpoint,
	}
}

// LoadAppConfigFromEnv applies the CIRCULATION_* environment variables to the defaults.
func LoadAppConfigFromEnv() (AppConfig, error) {
	return loadAppConfig(os.LookupEnv)
}

func loadAppConfig(lookup func(string) (string, bool)) (AppConfig, error) {
	cfg := DefaultAppConfig()

	if v, ok := lookup(EnvStore); ok {
		cfg.Store = strings.ToLower(v)
	}

	if v, ok := lookup(EnvDBAdapter); ok {
		cfg.DBAdapter = strings.ToLower(v)
	}

	if v, ok := lookup(EnvPostgresDSN); ok && v != "" {
		cfg.PostgresDSN = v
	}

	if v, ok := lookup(EnvSQLitePath); ok {
		cfg.SQLitePath = v
	}

	if v, ok := lookup(EnvOTLPTraceEndpoint); ok {
		cfg.OTLPTraceEndpoint = v
	}

	if v, ok := lookup(EnvOTLPMetricEndpoint); ok {
		cfg.OTLPMetricEndpoint = v
	}

	var err error

	if v, ok := lookup(EnvSweepInterval); ok {
		if cfg.SweepInterval, err = parsePositiveDuration(EnvSweepInterval, v); err != nil {
			return AppConfig{}, err
		}
	}

	if v, ok := lookup(EnvSweepTimeout); ok {
		if cfg.SweepTimeout, err = parsePositiveDuration(EnvSweepTimeout, v); err != nil {
			return AppConfig{}, err
		}
	}

	if v, ok := lookup(EnvLogLevel); ok {
		if err = cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return AppConfig{}, fmt.Errorf("%w: %s: %w", ErrInvalidSetting, EnvLogLevel, err)
		}
	}

	if v, ok := lookup(EnvOTELEnabled); ok {
		if cfg.OTELEnabled, err = strconv.ParseBool(v); err != nil {
			return AppConfig{}, fmt.Errorf("%w: %s: %w", ErrInvalidSetting, EnvOTELEnabled, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the store and adapter names.
func (c AppConfig) Validate() error {
	switch c.Store {
	case StorePostgres, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedStore, c.Store)
	}

	switch c.DBAdapter {
	case AdapterPGX, AdapterSQL, AdapterSQLX:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedAdapter, c.DBAdapter)
	}

	if c.SweepInterval <= 0 || c.SweepTimeout <= 0 {
		return fmt.Errorf("%w: sweep interval and timeout must be positive", ErrInvalidSetting)
	}

	return nil
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidSetting, name, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidSetting, name)
	}

	return d, nil
}
