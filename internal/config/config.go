package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Server  ServerConfig `mapstructure:"server"`
	Sources []string     `mapstructure:"sources"`
	Cache   CacheConfig  `mapstructure:"cache"`
	Fetch   FetchConfig  `mapstructure:"fetch"`
	Log     LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Host string     `mapstructure:"host"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type CacheConfig struct {
	// Backend selects the cache implementation: in_memory or file_system.
	Backend string `mapstructure:"backend"`
	// Dir is the private cache directory used by the file_system backend.
	Dir string `mapstructure:"dir"`
}

type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from an optional YAML file, environment variables
// prefixed with IMAGE_SERVER_, and built-in defaults. A missing config file is
// not an error; invalid content is.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.SetEnvPrefix("IMAGE_SERVER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("sources", []string{})
	v.SetDefault("cache.backend", "in_memory")
	v.SetDefault("cache.dir", "./data/cache")
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly so they work without a config file
	v.BindEnv("server.port", "IMAGE_SERVER_PORT")
	v.BindEnv("server.host", "IMAGE_SERVER_HOST")
	v.BindEnv("log.level", "IMAGE_SERVER_LOG_LEVEL")
	v.BindEnv("sources", "IMAGE_SERVER_SOURCES")
	v.BindEnv("cache.backend", "IMAGE_SERVER_CACHE_BACKEND")
	v.BindEnv("cache.dir", "IMAGE_SERVER_CACHE_DIR")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// IMAGE_SERVER_SOURCES arrives as one comma-separated string
	cfg.Sources = splitSources(cfg.Sources)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks startup-fatal configuration problems.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("no image sources configured")
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// splitSources expands comma-separated entries and drops blanks.
func splitSources(entries []string) []string {
	var out []string
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
