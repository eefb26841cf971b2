package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	errs "bugout/internal/errors"
)

type Config struct {
	Brokers        string `mapstructure:"BROKERS"`
	RedisUrl       string `mapstructure:"REDIS_URL"`
	RedisNamespace string `mapstructure:"REDIS_NAMESPACE"`
	TopicPrefix    string `mapstructure:"TOPIC_PREFIX"`
	AppName        string `mapstructure:"APP_NAME"`
	BoardSize      int    `mapstructure:"BOARD_SIZE"`
	BlockMs        int    `mapstructure:"BLOCK_MS"`
	PoolSize       int    `mapstructure:"POOL_SIZE"`
	PoolTimeoutMs  int    `mapstructure:"POOL_TIMEOUT_MS"`
	StreamMaxLen   int64  `mapstructure:"STREAM_MAXLEN"`
	BrainAddr      string `mapstructure:"BRAIN_ADDR"`
	BrainPort      string `mapstructure:"BRAIN_PORT"`
	BrainTimeoutMs int    `mapstructure:"BRAIN_TIMEOUT_MS"`
	EngineUrl      string `mapstructure:"ENGINE_URL"`
	GatewayPort    string `mapstructure:"GATEWAY_PORT"`
	IdleTimeoutSec int    `mapstructure:"IDLE_TIMEOUT_SEC"`
	UndoCapacity   int    `mapstructure:"UNDO_CAPACITY"`
	BotWorkers     int    `mapstructure:"BOT_WORKERS"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFile        string `mapstructure:"LOG_FILE"`
}

var defaults = map[string]any{
	"BROKERS":          "",
	"REDIS_URL":        "redis://localhost:6379",
	"REDIS_NAMESPACE":  "BUGOUT",
	"TOPIC_PREFIX":     "",
	"APP_NAME":         "",
	"BOARD_SIZE":       19,
	"BLOCK_MS":         5000,
	"POOL_SIZE":        10,
	"POOL_TIMEOUT_MS":  4000,
	"STREAM_MAXLEN":    1000,
	"BRAIN_ADDR":       "",
	"BRAIN_PORT":       "8082",
	"BRAIN_TIMEOUT_MS": 10000,
	"ENGINE_URL":       "",
	"GATEWAY_PORT":     "3012",
	"IDLE_TIMEOUT_SEC": 300,
	"UNDO_CAPACITY":    64,
	"BOT_WORKERS":      4,
	"LOG_LEVEL":        "info",
	"LOG_FILE":         "",
}

// Setup reads cfgPath when it exists and lets the environment override it.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isMissing(err) {
			return nil, fmt.Errorf("%w: read %s: %w", errs.ErrConfig, cfgPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isMissing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func (c *Config) Validate() error {
	if c.BoardSize < 5 || c.BoardSize > 25 {
		return fmt.Errorf("%w: BOARD_SIZE must be within [5, 25], got %d", errs.ErrConfig, c.BoardSize)
	}
	if c.BlockMs <= 0 {
		return fmt.Errorf("%w: BLOCK_MS must be positive", errs.ErrConfig)
	}
	if c.RedisNamespace == "" {
		return fmt.Errorf("%w: REDIS_NAMESPACE is empty", errs.ErrConfig)
	}
	if c.UndoCapacity <= 0 {
		return fmt.Errorf("%w: UNDO_CAPACITY must be positive", errs.ErrConfig)
	}
	return nil
}

// BusUrl is the first entry of BROKERS, falling back to the keyed store.
func (c *Config) BusUrl() string {
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			return b
		}
	}
	return c.RedisUrl
}

// Group returns the consumer group name for a service.
func (c *Config) Group(service string) string {
	if c.AppName != "" {
		return c.AppName
	}
	return service
}

func (c *Config) Block() time.Duration {
	return time.Duration(c.BlockMs) * time.Millisecond
}

func (c *Config) PoolTimeout() time.Duration {
	return time.Duration(c.PoolTimeoutMs) * time.Millisecond
}

func (c *Config) BrainTimeout() time.Duration {
	return time.Duration(c.BrainTimeoutMs) * time.Millisecond
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSec) * time.Second
}
