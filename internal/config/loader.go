package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/LeoDroves/mtga-log-client/internal/constants"
)

// LoadConfig reads configuration from an optional YAML file with environment
// variable overrides. A missing file is not an error; every setting has a
// default suitable for a stock 17Lands setup.
func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("MTGA_FOLLOWER")
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("api.host", constants.DefaultAPIHost)
	viper.SetDefault("api.token_file", defaultTokenFile())
	viper.SetDefault("api.request_timeout", constants.DefaultHTTPTimeout)

	viper.SetDefault("follower.once", false)
	viper.SetDefault("follower.poll_interval", constants.PollInterval)

	viper.SetDefault("status.enabled", false)
	viper.SetDefault("status.port", constants.DefaultStatusPort)

	viper.SetDefault("logging.level", "info")

	viper.SetDefault("retry.extra_attempts", constants.RetryExtraTries)
	viper.SetDefault("retry.interval", constants.RetryInterval)

	viper.SetDefault("breaker.enabled", false)
	viper.SetDefault("breaker.max_requests", 1)
	viper.SetDefault("breaker.interval", "60s")
	viper.SetDefault("breaker.timeout", "30s")
	viper.SetDefault("breaker.failure_ratio", 0.6)
	viper.SetDefault("breaker.min_requests", 5)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mtga_follower.yaml"
	}
	return filepath.Join(home, ".mtga_follower.yaml")
}
