package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/protrade/internal/core"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PROTRADE_SERVER_PORT.
const EnvPrefix = "PROTRADE"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BackendConfig points at the strategy backend the viewers read from.
type BackendConfig struct {
	APIBase string `mapstructure:"api_base"`
	// Timeout bounds a single upstream request. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ViewerConfig holds the initial viewer inputs.
type ViewerConfig struct {
	DefaultSymbol    string        `mapstructure:"default_symbol"`
	DefaultTimeframe string        `mapstructure:"default_tf"`
	WatchInterval    time.Duration `mapstructure:"watch_interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file. An empty path loads defaults plus
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("backend.api_base", EnvPrefix+"_API_BASE", EnvPrefix+"_BACKEND_API_BASE"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("backend.api_base", d.Backend.APIBase)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("viewer.default_symbol", d.Viewer.DefaultSymbol)
	v.SetDefault("viewer.default_tf", d.Viewer.DefaultTimeframe)
	v.SetDefault("viewer.watch_interval", d.Viewer.WatchInterval)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Backend: BackendConfig{
			APIBase: "http://127.0.0.1:8000",
			Timeout: 30 * time.Second,
		},
		Viewer: ViewerConfig{
			DefaultSymbol:    "SPY",
			DefaultTimeframe: string(core.Timeframe30m),
			WatchInterval:    30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Backend validation
	if c.Backend.APIBase == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("backend api_base is required"))
	}
	u, err := url.Parse(c.Backend.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("backend api_base must be an absolute http(s) URL, got %q", c.Backend.APIBase))
	}
	if c.Backend.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("backend timeout cannot be negative, got %s", c.Backend.Timeout))
	}

	// Viewer validation
	if _, err := core.ParseTimeframe(c.Viewer.DefaultTimeframe); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	if c.Viewer.WatchInterval <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("watch_interval must be positive, got %s", c.Viewer.WatchInterval))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics path must start with /, got %q", c.Metrics.Path))
	}

	return nil
}
