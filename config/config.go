package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/ober/internal/healthcheck"
	"github.com/angeloszaimis/ober/internal/httpserver"
	"github.com/angeloszaimis/ober/internal/roster"
	"github.com/angeloszaimis/ober/internal/vip"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	EnvPrefix  = "OBER"
	ConfigName = "failover"
)

// Flags bound into the configuration when present on the command line.
var flagKeys = map[string]string{
	"log-level":       "logging.level",
	"node":            "cluster.node",
	"metrics-address": "metrics.address",
}

type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	AddSource bool   `mapstructure:"add_source"`
}

type HealthConfig struct {
	Port     int    `mapstructure:"port"`
	Path     string `mapstructure:"path"`
	Interval string `mapstructure:"interval"`
	Rise     int    `mapstructure:"rise"`
	Fall     int    `mapstructure:"fall"`
}

type ClusterConfig struct {
	Node   string   `mapstructure:"node"`
	Roster []string `mapstructure:"roster"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

type Config struct {
	Environment string        `mapstructure:"environment"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Health      HealthConfig  `mapstructure:"health"`
	VIPs        []string      `mapstructure:"vips"`
	Cluster     ClusterConfig `mapstructure:"cluster"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// Load reads defaults, then the config file, then OBER_* environment
// variables, then any changed flags in flags. An empty path searches for
// failover.yaml in ./config, . and /etc/ober; a missing file is not an
// error there. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("environment", EnvDev)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.add_source", false)
	v.SetDefault("health.port", 8404)
	v.SetDefault("health.path", "/health")
	v.SetDefault("health.interval", "1s")
	v.SetDefault("health.rise", 2)
	v.SetDefault("health.fall", 2)
	v.SetDefault("vips", []string{})
	v.SetDefault("cluster.node", "")
	v.SetDefault("cluster.roster", []string{})
	v.SetDefault("metrics.address", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/ober")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
		validation.Field(&c.Logging,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Health,
			validation.Required,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.Port,
						validation.Required,
						validation.Min(1),
						validation.Max(65535),
					),
					validation.Field(&hc.Path,
						validation.Required,
						validation.By(validatePath),
					),
					validation.Field(&hc.Interval,
						validation.Required,
						validation.By(validateInterval),
					),
					validation.Field(&hc.Rise,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&hc.Fall,
						validation.Required,
						validation.Min(1),
					),
				)
			}),
		),
		validation.Field(&c.VIPs,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateVIP)),
			validation.By(validateVIPList),
		),
		validation.Field(&c.Cluster,
			validation.By(func(value interface{}) error {
				cc, ok := value.(ClusterConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ClusterConfig")
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.Node,
						is.Host,
					),
					validation.Field(&cc.Roster,
						validation.Each(validation.By(validateHostlist)),
					),
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.Address,
						validation.When(mc.Address != "", validation.By(httpserver.ValidateListenAddress)),
					),
				)
			}),
		),
	)
}

// HealthInterval is the poll interval. Validate guarantees it parses.
func (c *Config) HealthInterval() time.Duration {
	d, _ := time.ParseDuration(c.Health.Interval)
	return d
}

// ProbeURL is the local health endpoint.
func (c *Config) ProbeURL() string {
	return healthcheck.Target(c.Health.Port, c.Health.Path)
}

func (c *Config) Addresses() ([]vip.Address, error) {
	return vip.ParseList(c.VIPs)
}

// Nodes expands the roster expressions.
func (c *Config) Nodes() ([]roster.Node, error) {
	return roster.Parse(c.Cluster.Roster)
}

func validatePath(value interface{}) error {
	p, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if !strings.HasPrefix(p, "/") {
		return validation.NewError("validation_invalid_path", "must start with /")
	}

	return nil
}

func validateInterval(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 1s, 1500ms)")
	}

	if d <= healthcheck.Timeout {
		return validation.NewError("validation_interval_too_short",
			fmt.Sprintf("must be longer than the probe timeout (%s)", healthcheck.Timeout))
	}

	return nil
}

func validateVIP(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := vip.Parse(raw); err != nil {
		return validation.NewError("validation_invalid_vip", err.Error())
	}

	return nil
}

func validateVIPList(value interface{}) error {
	raws, ok := value.([]string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a list of strings")
	}

	if _, err := vip.ParseList(raws); errors.Is(err, vip.ErrDuplicate) {
		return validation.NewError("validation_duplicate_vip", err.Error())
	}

	return nil
}

func validateHostlist(value interface{}) error {
	expr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	hosts, err := roster.ParseHostlist(expr)
	if err != nil {
		return validation.NewError("validation_invalid_hostlist", err.Error())
	}

	for _, h := range hosts {
		if err := is.Host.Validate(h); err != nil {
			return validation.NewError("validation_invalid_host", fmt.Sprintf("%q is not a valid host", h))
		}
	}

	return nil
}
