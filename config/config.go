// Package config loads host settings from defaults, an optional YAML file
// and SCREEPS_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/screeps-wasm/errors"
	"github.com/wippyai/screeps-wasm/runtime"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "SCREEPS"

type Config struct {
	LogLevel   string `mapstructure:"log_level"`
	RecordPath string `mapstructure:"record_path"`
	WorldPath  string `mapstructure:"world_path"`
	// Guest memory limit in pages of 64KiB.
	MemoryPages uint32 `mapstructure:"memory_pages"`
	// Most arena bytes the host fills each tick.
	ArenaCapacity uint32 `mapstructure:"arena_capacity"`
	// CPU budget of one screeps_loop call, in milliseconds. 0 disables it.
	TickBudgetMS int `mapstructure:"tick_budget_ms"`
	// Ticks to run when not interactive.
	Ticks int `mapstructure:"ticks"`
}

// Load reads the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("record_path", "")
	v.SetDefault("world_path", "")
	v.SetDefault("memory_pages", 256) // 16MB
	v.SetDefault("arena_capacity", 64*1024)
	v.SetDefault("tick_budget_ms", 50)
	v.SetDefault("ticks", 10)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.InvalidData(errors.PhaseConfig, "log_level", err.Error())
	}
	if c.TickBudgetMS < 0 {
		return errors.InvalidData(errors.PhaseConfig, "tick_budget_ms", fmt.Sprintf("negative budget %d", c.TickBudgetMS))
	}
	if c.Ticks < 0 {
		return errors.InvalidData(errors.PhaseConfig, "ticks", fmt.Sprintf("negative tick count %d", c.Ticks))
	}
	if c.ArenaCapacity != 0 && c.ArenaCapacity < 8 {
		return errors.InvalidData(errors.PhaseConfig, "arena_capacity", "smaller than the arena header")
	}
	return nil
}

func (c *Config) TickBudget() time.Duration {
	return time.Duration(c.TickBudgetMS) * time.Millisecond
}

// Level returns the parsed log level; invalid levels fall back to info.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// NewLogger builds a console logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if c.Level() > zapcore.DebugLevel {
		zc = zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(c.Level())
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// Runtime returns the runtime settings with logger attached.
func (c *Config) Runtime(logger *zap.Logger) *runtime.Config {
	return &runtime.Config{
		Logger:           logger,
		MemoryLimitPages: c.MemoryPages,
		ArenaLimit:       c.ArenaCapacity,
		TickBudget:       c.TickBudget(),
	}
}
