// Package config loads the courier command settings from defaults, an
// optional YAML file, a .env file and COURIER_ prefixed environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/adamwoolhether/courier/client/mock"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "COURIER"

// Config holds the settings of the courier command.
type Config struct {
	Log    Log    `mapstructure:"log"`
	Client Client `mapstructure:"client"`
	Mock   Mock   `mapstructure:"mock"`
	Trace  Trace  `mapstructure:"trace"`
	Replay Replay `mapstructure:"replay"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Client configures the HTTP client.
type Client struct {
	Timeout     time.Duration `mapstructure:"timeout"       validate:"gte=0"`
	UserAgent   string        `mapstructure:"user_agent"`
	BaseURL     string        `mapstructure:"base_url"      validate:"omitempty,url"`
	MaxInFlight int           `mapstructure:"max_in_flight" validate:"gte=0"`
	Throttle    Throttle      `mapstructure:"throttle"`
}

// Throttle limits the outbound request rate. A zero RPS disables it.
type Throttle struct {
	RPS   int `mapstructure:"rps"   validate:"gte=0"`
	Burst int `mapstructure:"burst" validate:"gte=0"`
}

// Mock points at a fixture file answering requests instead of the network.
type Mock struct {
	File string `mapstructure:"file"`
	Mode string `mapstructure:"mode" validate:"oneof=off partial strict"`
}

// Trace enables OTLP/HTTP span export when Endpoint is set.
type Trace struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name" validate:"required"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}

// Replay configures the fixture replay server.
type Replay struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	Origin          string        `mapstructure:"origin"           validate:"required,url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// MockMode returns the parsed mock mode.
func (c Config) MockMode() mock.Mode {
	mode, err := mock.ParseMode(c.Mock.Mode)
	if err != nil {
		return mock.Off
	}

	return mode
}

// Load builds a Config. An empty configFile skips the YAML layer. An empty
// envFile loads ".env" when present.
func Load(configFile, envFile string) (*Config, error) {
	if err := loadEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Mock.Mode = strings.ToLower(cfg.Mock.Mode)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Mock.Mode != "off" && cfg.Mock.File == "" {
		return nil, fmt.Errorf("invalid config: mock mode %s requires mock.file", cfg.Mock.Mode)
	}

	return &cfg, nil
}

func loadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.user_agent", "courier")
	v.SetDefault("client.base_url", "")
	v.SetDefault("client.max_in_flight", 0)
	v.SetDefault("client.throttle.rps", 0)
	v.SetDefault("client.throttle.burst", 1)

	v.SetDefault("mock.file", "")
	v.SetDefault("mock.mode", "off")

	v.SetDefault("trace.endpoint", "")
	v.SetDefault("trace.insecure", false)
	v.SetDefault("trace.service_name", "courier")
	v.SetDefault("trace.sample_ratio", 1.0)

	v.SetDefault("replay.addr", ":8080")
	v.SetDefault("replay.origin", "http://localhost")
	v.SetDefault("replay.shutdown_timeout", 10*time.Second)
}
