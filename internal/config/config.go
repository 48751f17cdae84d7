package config

import (
	"time"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Follower FollowerConfig `mapstructure:"follower"`
	Status   StatusConfig   `mapstructure:"status"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Breaker  BreakerConfig  `mapstructure:"breaker"`
}

type APIConfig struct {
	Host           string        `mapstructure:"host"`
	TokenFile      string        `mapstructure:"token_file"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type FollowerConfig struct {
	LogFile      string        `mapstructure:"log_file"`
	Once         bool          `mapstructure:"once"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type StatusConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type RetryConfig struct {
	ExtraAttempts int           `mapstructure:"extra_attempts"`
	Interval      time.Duration `mapstructure:"interval"`
}

type BreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
