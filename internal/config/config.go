// Package config loads service configuration from an optional YAML file,
// a .env file and WAVENATION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// WAVENATION_SERVER_PORT overrides server.port.
const EnvPrefix = "WAVENATION"

type ServerConfig struct {
	Port    int    `mapstructure:"port" validate:"required|int|min:1|max:65535"`
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,warning,error"`
	HTTP  bool   `mapstructure:"http"`
}

type AuthConfig struct {
	Password   string        `mapstructure:"password"`
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type ScheduleConfig struct {
	Timezone     string        `mapstructure:"timezone" validate:"required"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type PollsConfig struct {
	Salt           string `mapstructure:"salt"`
	ResultsLimit   int    `mapstructure:"results_limit" validate:"required|int|min:1"`
	VotesPerMinute int    `mapstructure:"votes_per_minute" validate:"int|min:0"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	SizeMB  int           `mapstructure:"size_mb" validate:"int|min:0"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type NowPlayingConfig struct {
	URL string `mapstructure:"url"`
}

// Config is the fully resolved service configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Polls      PollsConfig      `mapstructure:"polls"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	NowPlaying NowPlayingConfig `mapstructure:"nowplaying"`

	// Path is the config file that was read, empty when none was used.
	Path string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "")
	v.SetDefault("database.path", "wavenation.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.http", false)
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("schedule.timezone", "America/Chicago")
	v.SetDefault("schedule.poll_interval", 30*time.Second)
	v.SetDefault("polls.salt", "")
	v.SetDefault("polls.results_limit", 2000)
	v.SetDefault("polls.votes_per_minute", 30)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size_mb", 16)
	v.SetDefault("cache.ttl", 60*time.Second)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("nowplaying.url", "")
}

// Load reads configuration. configPath may be empty, in which case only
// defaults and the environment are used. A missing .env file is ignored.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		filename := filepath.Base(configPath)
		v.AddConfigPath(filepath.Dir(configPath))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	conf.Path = configPath

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks every section and returns the first failing one
func (c *Config) Validate() error {
	sections := []struct {
		name string
		data interface{}
	}{
		{"server", &c.Server},
		{"database", &c.Database},
		{"log", &c.Log},
		{"auth", &c.Auth},
		{"schedule", &c.Schedule},
		{"polls", &c.Polls},
		{"cache", &c.Cache},
	}
	for _, s := range sections {
		v := validate.Struct(s.data)
		if !v.Validate() {
			return fmt.Errorf("invalid %s config: %s", s.name, v.Errors.One())
		}
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("invalid auth config: session_ttl must be positive")
	}
	if c.Schedule.PollInterval <= 0 {
		return fmt.Errorf("invalid schedule config: poll_interval must be positive")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid schedule config: unknown timezone %q", c.Schedule.Timezone)
	}
	return nil
}

// Location returns the authoritative schedule timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
