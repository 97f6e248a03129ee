// Package config loads epinet settings from YAML files and EPINET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/epinet/pkg/domain"
	"github.com/aretw0/epinet/pkg/geo"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. EPINET_SERVER_ADDR.
const EnvPrefix = "EPINET_"

// Config is the full application configuration.
type Config struct {
	Server ServerConfig  `yaml:"server" mapstructure:"server"`
	Log    LogConfig     `yaml:"log" mapstructure:"log"`
	Redis  RedisConfig   `yaml:"redis" mapstructure:"redis"`
	Kafka  KafkaConfig   `yaml:"kafka" mapstructure:"kafka"`
	Sim    SimConfig     `yaml:"sim" mapstructure:"sim"`
	Params domain.Params `yaml:"params" mapstructure:"params"`
	Bounds geo.Bounds    `yaml:"bounds" mapstructure:"bounds"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RedisConfig enables distributed step locking when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	LockTTL  time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`
}

// KafkaConfig enables snapshot publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	Topic   string   `yaml:"topic" mapstructure:"topic"`
}

// SimConfig holds the limits enforced on incoming requests.
type SimConfig struct {
	MinPopulation    int    `yaml:"min_population" mapstructure:"min_population"`
	MaxPopulation    int    `yaml:"max_population" mapstructure:"max_population"`
	MaxDaysPerStep   int    `yaml:"max_days_per_step" mapstructure:"max_days_per_step"`
	TimeseriesWindow int    `yaml:"timeseries_window" mapstructure:"timeseries_window"`
	Seed             uint64 `yaml:"seed" mapstructure:"seed"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8000", ShutdownTimeout: 5 * time.Second},
		Log:    LogConfig{Level: "info", Format: "text"},
		Redis:  RedisConfig{Prefix: "epinet:", LockTTL: 30 * time.Second},
		Kafka:  KafkaConfig{Topic: "epinet.snapshots"},
		Sim: SimConfig{
			MinPopulation:    200,
			MaxPopulation:    20000,
			MaxDaysPerStep:   30,
			TimeseriesWindow: 400,
		},
		Params: domain.DefaultParams(),
		Bounds: geo.Islamabad,
	}
}

// Load reads path (if non-empty) and applies environment overrides on top of Default.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Environ())
}

// LoadWithEnv is Load with an explicit environment, as KEY=VALUE pairs.
func LoadWithEnv(path string, environ []string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config: %w", err)
			}
		} else {
			raw := map[string]any{}
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			if err := decode(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("invalid config %s: %w", path, err)
			}
		}
	}

	if env := envMap(environ); len(env) > 0 {
		if err := decode(env, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid environment override: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// envMap turns EPINET_SECTION_KEY=value into {"section": {"key": "value"}}.
// Section names never contain underscores; keys may.
func envMap(environ []string) map[string]any {
	out := map[string]any{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		section, key, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_")
		if !ok || key == "" {
			continue
		}
		m, _ := out[section].(map[string]any)
		if m == nil {
			m = map[string]any{}
			out[section] = m
		}
		m[key] = value
	}
	return out
}

func decode(input map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if err := c.Params.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Bounds.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bounds: %w", err))
	}
	if c.Sim.MinPopulation < 1 || c.Sim.MaxPopulation < c.Sim.MinPopulation {
		errs = append(errs, fmt.Errorf("population range [%d, %d] is empty", c.Sim.MinPopulation, c.Sim.MaxPopulation))
	}
	if c.Sim.MaxDaysPerStep < 1 {
		errs = append(errs, errors.New("max_days_per_step must be at least 1"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
