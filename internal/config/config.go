package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Log           LogConfig          `mapstructure:"log"`
	Request       RequestConfig      `mapstructure:"request"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Catalog       CatalogConfig      `mapstructure:"catalog"`
	Fanout        FanoutConfig       `mapstructure:"fanout"`
	Redis         RedisConfig        `mapstructure:"redis"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type RequestConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory, sqlite or postgres
	DSN    string `mapstructure:"dsn"`
}

type CatalogConfig struct {
	Driver string `mapstructure:"driver"` // memory or redis
}

type FanoutConfig struct {
	Driver       string        `mapstructure:"driver"` // memory or redis
	Topic        string        `mapstructure:"topic"`
	Group        string        `mapstructure:"group"`
	Consumer     string        `mapstructure:"consumer"`
	BatchSize    int           `mapstructure:"batch_size"`
	BlockTimeout time.Duration `mapstructure:"block_timeout"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	BufferSize   int           `mapstructure:"buffer_size"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NotificationConfig struct {
	RecentLimit int `mapstructure:"recent_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("request.timeout", 3*time.Second)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("catalog.driver", "memory")
	v.SetDefault("fanout.driver", "memory")
	v.SetDefault("fanout.topic", "bid-notifications")
	v.SetDefault("fanout.group", "notification-store")
	v.SetDefault("fanout.consumer", "bid-ledger-1")
	v.SetDefault("fanout.batch_size", 10)
	v.SetDefault("fanout.block_timeout", time.Second)
	v.SetDefault("fanout.retry_delay", time.Second)
	v.SetDefault("fanout.buffer_size", 100)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("notifications.recent_limit", 5)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Environment variable mappings that do not follow the key layout
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("storage.dsn", "STORAGE_DSN", "DATABASE_URL")
}

// Load reads defaults, an optional config.yaml and environment overrides
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Configuration file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/bid-ledger/")

	bindEnv(v)

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file path, still honouring defaults and env
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", configPath, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown drivers and settings the services cannot run with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("config: storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Catalog.Driver != "memory" && c.Catalog.Driver != "redis" {
		return fmt.Errorf("config: unknown catalog.driver %q", c.Catalog.Driver)
	}
	if c.Fanout.Driver != "memory" && c.Fanout.Driver != "redis" {
		return fmt.Errorf("config: unknown fanout.driver %q", c.Fanout.Driver)
	}
	if c.Fanout.Topic == "" {
		return errors.New("config: fanout.topic must not be empty")
	}
	if c.Request.Timeout <= 0 {
		return errors.New("config: request.timeout must be positive")
	}
	return nil
}

// UsesRedis reports whether any component needs a redis client
func (c *Config) UsesRedis() bool {
	return c.Catalog.Driver == "redis" || c.Fanout.Driver == "redis"
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: :%d (%s), Storage: %s, Catalog: %s, Fanout: %s/%s, Redis: %s",
		c.Server.Port,
		c.Server.Mode,
		c.Storage.Driver,
		c.Catalog.Driver,
		c.Fanout.Driver,
		c.Fanout.Topic,
		c.Redis.Address,
	)
}
