package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent wellchat configuration stored as
// config.toml in the .wellchat/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	API       APIConfig       `toml:"api"`
	Sampling  SamplingConfig  `toml:"sampling"`
	Assistant AssistantConfig `toml:"assistant"`
	Limits    LimitsConfig    `toml:"limits"`
}

// APIConfig holds the endpoint settings used by the request client.
type APIConfig struct {
	Provider string `toml:"provider,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
	Model    string `toml:"model,omitempty"`

	// Timeout bounds a whole request including the streamed body, as a Go
	// duration string (e.g. "5m").
	Timeout string `toml:"timeout,omitempty"`
}

// SamplingConfig holds generation parameters. Nil or zero values are left out
// of the request so the endpoint applies its own defaults.
type SamplingConfig struct {
	Temperature     *float64 `toml:"temperature,omitempty"`
	TopP            *float64 `toml:"top_p,omitempty"`
	MaxOutputTokens int      `toml:"max_output_tokens,omitempty"`
}

// AssistantConfig shapes the prompt.
type AssistantConfig struct {
	Instructions string `toml:"instructions,omitempty"`
	PromptPrefix string `toml:"prompt_prefix,omitempty"`

	// MaxHistory caps the past messages sent with each question. A negative
	// value sends none.
	MaxHistory int `toml:"max_history"`
}

// LimitsConfig protects the endpoint from the client.
type LimitsConfig struct {
	// RequestsPerMinute caps outgoing requests. Zero disables the limiter.
	RequestsPerMinute int `toml:"requests_per_minute,omitempty"`

	// BreakerFailures is the number of consecutive failed requests that
	// opens the circuit breaker. Zero disables the breaker.
	BreakerFailures uint `toml:"breaker_failures"`
}

// ParseTimeout returns the configured timeout, or zero when unset.
func (a APIConfig) ParseTimeout() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid value for api.timeout: %w", err)
	}
	return d, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.provider": {
		get: func(c *Config) string { return c.API.Provider },
		set: func(c *Config, v string) error { c.API.Provider = v; return nil },
	},
	"api.base_url": {
		get: func(c *Config) string { return c.API.BaseURL },
		set: func(c *Config, v string) error { c.API.BaseURL = v; return nil },
	},
	"api.model": {
		get: func(c *Config) string { return c.API.Model },
		set: func(c *Config, v string) error { c.API.Model = v; return nil },
	},
	"api.timeout": {
		get: func(c *Config) string { return c.API.Timeout },
		set: func(c *Config, v string) error {
			if v != "" {
				if _, err := time.ParseDuration(v); err != nil {
					return fmt.Errorf("invalid value for api.timeout: %w", err)
				}
			}
			c.API.Timeout = v
			return nil
		},
	},
	"sampling.temperature": {
		get: func(c *Config) string { return formatFloat(c.Sampling.Temperature) },
		set: func(c *Config, v string) error {
			return setFloat(&c.Sampling.Temperature, "sampling.temperature", v, 0, 2)
		},
	},
	"sampling.top_p": {
		get: func(c *Config) string { return formatFloat(c.Sampling.TopP) },
		set: func(c *Config, v string) error {
			return setFloat(&c.Sampling.TopP, "sampling.top_p", v, 0, 1)
		},
	},
	"sampling.max_output_tokens": {
		get: func(c *Config) string { return formatInt(c.Sampling.MaxOutputTokens) },
		set: func(c *Config, v string) error {
			return setInt(&c.Sampling.MaxOutputTokens, "sampling.max_output_tokens", v)
		},
	},
	"assistant.instructions": {
		get: func(c *Config) string { return c.Assistant.Instructions },
		set: func(c *Config, v string) error { c.Assistant.Instructions = v; return nil },
	},
	"assistant.prompt_prefix": {
		get: func(c *Config) string { return c.Assistant.PromptPrefix },
		set: func(c *Config, v string) error { c.Assistant.PromptPrefix = v; return nil },
	},
	"assistant.max_history": {
		get: func(c *Config) string { return formatInt(c.Assistant.MaxHistory) },
		set: func(c *Config, v string) error {
			if v == "" {
				c.Assistant.MaxHistory = 0
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for assistant.max_history: %w", err)
			}
			c.Assistant.MaxHistory = n
			return nil
		},
	},
	"limits.requests_per_minute": {
		get: func(c *Config) string { return formatInt(c.Limits.RequestsPerMinute) },
		set: func(c *Config, v string) error {
			return setInt(&c.Limits.RequestsPerMinute, "limits.requests_per_minute", v)
		},
	},
	"limits.breaker_failures": {
		get: func(c *Config) string {
			return strconv.FormatUint(uint64(c.Limits.BreakerFailures), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for limits.breaker_failures: %w", err)
			}
			c.Limits.BreakerFailures = uint(n)
			return nil
		},
	},
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

// setFloat parses v into *dst within [lo, hi]. An empty value clears it.
func setFloat(dst **float64, key, v string, lo, hi float64) error {
	if v == "" {
		*dst = nil
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if f < lo || f > hi {
		return fmt.Errorf("invalid value for %s: %g is outside [%g, %g]", key, f, lo, hi)
	}
	*dst = &f
	return nil
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// setInt parses v into a non-negative *dst. An empty value resets it to zero.
func setInt(dst *int, key, v string) error {
	if v == "" {
		*dst = 0
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if n < 0 {
		return fmt.Errorf("invalid value for %s: must not be negative", key)
	}
	*dst = n
	return nil
}
