package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/PhelelaniM/UrbanMind/internal/parcel"
)

// Config holds the full application configuration.
type Config struct {
	Parcels ParcelsConfig `yaml:"parcels" mapstructure:"parcels"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Resolve ResolveConfig `yaml:"resolve" mapstructure:"resolve"`
	Remote  RemoteConfig  `yaml:"remote" mapstructure:"remote"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// Parcel source kinds.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Resolution strategies.
const (
	StrategyLocal  = "local"
	StrategyRemote = "remote"
)

// ParcelsConfig configures where the feature collection is loaded from.
type ParcelsConfig struct {
	Source      string          `yaml:"source" mapstructure:"source"`
	Paths       []string        `yaml:"paths" mapstructure:"paths"`
	DatabaseURL string          `yaml:"database_url" mapstructure:"database_url"`
	Table       string          `yaml:"table" mapstructure:"table"`
	MaxConns    int32           `yaml:"max_conns" mapstructure:"max_conns"`
	Concurrency int             `yaml:"concurrency" mapstructure:"concurrency"`
	Fields      parcel.FieldMap `yaml:"fields" mapstructure:"fields"`
}

// CatalogConfig optionally replaces the embedded intelligence catalog.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ResolveConfig picks one resolution strategy for both identifier kinds.
type ResolveConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
}

// RemoteConfig configures the client used by the remote strategy.
type RemoteConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`

	// Retries after the first attempt for transient failures. 0 disables.
	Retries        int `yaml:"retries" mapstructure:"retries"`
	RetryBackoffMs int `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
}

// Timeout returns TimeoutSecs as a duration.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	CORSOrigins        []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// ReportConfig configures the staged text report.
type ReportConfig struct {
	StageDelayMs int `yaml:"stage_delay_ms" mapstructure:"stage_delay_ms"`
}

// StageDelay returns StageDelayMs as a duration.
func (r ReportConfig) StageDelay() time.Duration {
	return time.Duration(r.StageDelayMs) * time.Millisecond
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("URBANMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	fields := parcel.DefaultFieldMap()
	v.SetDefault("parcels.source", SourceFile)
	v.SetDefault("parcels.paths", []string{"data/coct_zoning_sample.geojson"})
	v.SetDefault("parcels.database_url", "")
	v.SetDefault("parcels.table", parcel.DefaultTable)
	v.SetDefault("parcels.max_conns", 4)
	v.SetDefault("parcels.concurrency", 4)
	v.SetDefault("parcels.fields.key", fields.Key)
	v.SetDefault("parcels.fields.zone_code", fields.ZoneCode)
	v.SetDefault("parcels.fields.zone_description", fields.ZoneDescription)
	v.SetDefault("parcels.fields.secondary_code", fields.SecondaryCode)
	v.SetDefault("catalog.path", "")
	v.SetDefault("resolve.strategy", StrategyLocal)
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.timeout_secs", 10)
	v.SetDefault("remote.rate_limit", 5.0)
	v.SetDefault("remote.retries", 0)
	v.SetDefault("remote.retry_backoff_ms", 250)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.request_timeout_secs", 30)
	v.SetDefault("report.stage_delay_ms", 400)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "lookup" (any command resolving parcels), "serve" and "import".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "lookup":
		errs = append(errs, c.validateResolution()...)
	case "serve":
		errs = append(errs, c.validateResolution()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RequestTimeoutSecs <= 0 {
			errs = append(errs, "server.request_timeout_secs must be > 0")
		}
	case "import":
		if len(c.Parcels.Paths) == 0 {
			errs = append(errs, "parcels.paths is required")
		}
		if c.Parcels.DatabaseURL == "" {
			errs = append(errs, "parcels.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Report.StageDelayMs < 0 {
		errs = append(errs, "report.stage_delay_ms must be >= 0")
	}
	if c.Log.Format != "" && c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Sprintf("log.format %q must be json or console", c.Log.Format))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateResolution() []string {
	var errs []string

	switch c.Resolve.Strategy {
	case StrategyLocal:
		errs = append(errs, c.validateSource()...)
	case StrategyRemote:
		if c.Remote.BaseURL == "" {
			errs = append(errs, "remote.base_url is required for the remote strategy")
		}
		if c.Remote.TimeoutSecs <= 0 {
			errs = append(errs, "remote.timeout_secs must be > 0")
		}
		if c.Remote.RateLimit <= 0 {
			errs = append(errs, "remote.rate_limit must be > 0")
		}
		if c.Remote.Retries < 0 {
			errs = append(errs, "remote.retries must be >= 0")
		}
	default:
		errs = append(errs, fmt.Sprintf("resolve.strategy %q must be local or remote", c.Resolve.Strategy))
	}

	return errs
}

func (c *Config) validateSource() []string {
	switch c.Parcels.Source {
	case SourceFile:
		if len(c.Parcels.Paths) == 0 {
			return []string{"parcels.paths is required for the file source"}
		}
	case SourcePostgres:
		if c.Parcels.DatabaseURL == "" {
			return []string{"parcels.database_url is required for the postgres source"}
		}
	default:
		return []string{fmt.Sprintf("parcels.source %q must be file or postgres", c.Parcels.Source)}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
