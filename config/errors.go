package config

import (
	"errors"
	"fmt"
)

// ErrConfiguration is wrapped by every configuration failure.
var ErrConfiguration = errors.New("configuration error")

// ConfigError names the offending key and what is wrong with it.
type ConfigError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

func configErrorf(key string, err error, format string, args ...any) error {
	return &ConfigError{Key: key, Reason: fmt.Sprintf(format, args...), Err: err}
}
