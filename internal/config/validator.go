package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateAPI(cfg.API); err != nil {
		errors = append(errors, err)
	}

	if err := validateFollower(cfg.Follower); err != nil {
		errors = append(errors, err)
	}

	if err := validateStatus(cfg.Status); err != nil {
		errors = append(errors, err)
	}

	if err := validateRetry(cfg.Retry); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateAPI(cfg APIConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "api.host",
			Message: "API host is required",
		}
	}

	if _, err := url.ParseRequestURI(cfg.Host); err != nil {
		return &ValidationError{
			Field:   "api.host",
			Message: fmt.Sprintf("API host must be a valid URL, got %q", cfg.Host),
		}
	}

	if cfg.RequestTimeout <= 0 {
		return &ValidationError{
			Field:   "api.request_timeout",
			Message: "request timeout must be positive",
		}
	}

	return nil
}

func validateFollower(cfg FollowerConfig) error {
	if cfg.PollInterval <= 0 {
		return &ValidationError{
			Field:   "follower.poll_interval",
			Message: "poll interval must be positive",
		}
	}

	return nil
}

func validateStatus(cfg StatusConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "status.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateRetry(cfg RetryConfig) error {
	if cfg.ExtraAttempts < 0 {
		return &ValidationError{
			Field:   "retry.extra_attempts",
			Message: "extra attempts must not be negative",
		}
	}

	if cfg.Interval <= 0 {
		return &ValidationError{
			Field:   "retry.interval",
			Message: "retry interval must be positive",
		}
	}

	return nil
}
