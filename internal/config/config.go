// Package config loads runtime configuration from .gcode.yaml, GCODE_* env
// vars and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
)

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr       string `mapstructure:"addr"`
	EnableCORS bool   `mapstructure:"enable_cors"`
	Debug      bool   `mapstructure:"debug"`
}

// StorageConfig selects and configures the stores.
type StorageConfig struct {
	UseMemory     bool   `mapstructure:"use_memory"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"` // optional; score history falls back to daily readings
	MaxConns      int32  `mapstructure:"max_conns"`
	Migrate       bool   `mapstructure:"migrate"`
}

// CacheConfig sizes the natal chart cache.
type CacheConfig struct {
	NatalSize int `mapstructure:"natal_size"`
}

// JobsConfig configures the scheduler.
type JobsConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DailyInterval   time.Duration `mapstructure:"daily_interval"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RetentionDays   int           `mapstructure:"retention_days"`
}

// ForecastConfig bounds forecast and batch concurrency.
type ForecastConfig struct {
	Workers int `mapstructure:"workers"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config holds all runtime configuration.
type Config struct {
	Engine   string         `mapstructure:"engine"`
	Bodies   string         `mapstructure:"bodies"`
	Scoring  string         `mapstructure:"scoring"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("engine", astro.EngineMock)
	v.SetDefault("bodies", astro.BodySetClassical)
	v.SetDefault("scoring", astro.ScoringWeighted)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.enable_cors", true)
	v.SetDefault("http.debug", false)
	v.SetDefault("storage.use_memory", true)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")
	v.SetDefault("storage.max_conns", 10)
	v.SetDefault("storage.migrate", true)
	v.SetDefault("cache.natal_size", 1024)
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.daily_interval", time.Hour)
	v.SetDefault("jobs.cleanup_interval", 24*time.Hour)
	v.SetDefault("jobs.retention_days", 90)
	v.SetDefault("forecast.workers", 4)
	v.SetDefault("metrics.enabled", true)
}

// Init points v at cfgFile, or at .gcode.yaml in the working directory or
// home directory, and enables GCODE_* environment overrides. A missing
// default config file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".gcode")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("GCODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load applies defaults, unmarshals v and validates the result.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown strategy names, unsupported engine and body set
// pairings, missing DSNs and non-positive sizes.
func (c Config) Validate() error {
	var errs []error

	if _, err := astro.EngineByName(c.Engine); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}
	if _, err := astro.BodySet(c.Bodies); err != nil {
		errs = append(errs, fmt.Errorf("bodies: %w", err))
	}
	if _, err := astro.ScorerByName(c.Scoring); err != nil {
		errs = append(errs, fmt.Errorf("scoring: %w", err))
	}
	if !c.Storage.UseMemory && c.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("storage.postgres_dsn is required unless storage.use_memory is set"))
	}
	if c.Cache.NatalSize <= 0 {
		errs = append(errs, fmt.Errorf("cache.natal_size must be positive, got %d", c.Cache.NatalSize))
	}
	if c.Forecast.Workers <= 0 {
		errs = append(errs, fmt.Errorf("forecast.workers must be positive, got %d", c.Forecast.Workers))
	}
	if c.Jobs.RetentionDays <= 0 {
		errs = append(errs, fmt.Errorf("jobs.retention_days must be positive, got %d", c.Jobs.RetentionDays))
	}
	if c.Jobs.DailyInterval <= 0 || c.Jobs.CleanupInterval <= 0 {
		errs = append(errs, errors.New("jobs intervals must be positive"))
	}
	if len(errs) == 0 {
		if _, err := c.Calculator(); err != nil {
			errs = append(errs, fmt.Errorf("engine %s with bodies %s: %w", c.Engine, c.Bodies, err))
		}
	}

	return errors.Join(errs...)
}

// Calculator builds the chart calculator the configuration selects.
func (c Config) Calculator() (*astro.Calculator, error) {
	engine, err := astro.EngineByName(c.Engine)
	if err != nil {
		return nil, err
	}
	bodies, err := astro.BodySet(c.Bodies)
	if err != nil {
		return nil, err
	}
	scorer, err := astro.ScorerByName(c.Scoring)
	if err != nil {
		return nil, err
	}
	return astro.NewCalculator(
		astro.WithEngine(engine),
		astro.WithBodies(c.Bodies, bodies),
		astro.WithScorer(scorer),
	)
}
