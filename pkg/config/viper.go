package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/wellchat/pkg/dotdir"
)

// EnvPrefix is the prefix of environment variables that override config keys,
// e.g. WELLCHAT_API_MODEL for api.model.
const EnvPrefix = "WELLCHAT"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the WELLCHAT_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (WELLCHAT_API_MODEL, WELLCHAT_API_BASE_URL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: WELLCHAT_API_MODEL, WELLCHAT_SAMPLING_TOP_P, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// API
	v.SetDefault("api.provider", d.API.Provider)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.model", d.API.Model)
	v.SetDefault("api.timeout", d.API.Timeout)

	// Sampling: temperature and top_p stay unset so the endpoint default applies.
	v.SetDefault("sampling.max_output_tokens", d.Sampling.MaxOutputTokens)

	// Assistant
	v.SetDefault("assistant.instructions", d.Assistant.Instructions)
	v.SetDefault("assistant.prompt_prefix", d.Assistant.PromptPrefix)
	v.SetDefault("assistant.max_history", d.Assistant.MaxHistory)

	// Limits
	v.SetDefault("limits.requests_per_minute", d.Limits.RequestsPerMinute)
	v.SetDefault("limits.breaker_failures", d.Limits.BreakerFailures)
}

// FromViper resolves the effective Config from v, i.e. after flags,
// environment, config file and defaults have been layered. Temperature and
// top_p stay nil unless some layer sets them.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Version: v.GetInt("version"),
		API: APIConfig{
			Provider: v.GetString("api.provider"),
			BaseURL:  v.GetString("api.base_url"),
			Model:    v.GetString("api.model"),
			Timeout:  v.GetString("api.timeout"),
		},
		Sampling: SamplingConfig{
			MaxOutputTokens: v.GetInt("sampling.max_output_tokens"),
		},
		Assistant: AssistantConfig{
			Instructions: v.GetString("assistant.instructions"),
			PromptPrefix: v.GetString("assistant.prompt_prefix"),
			MaxHistory:   v.GetInt("assistant.max_history"),
		},
		Limits: LimitsConfig{
			RequestsPerMinute: v.GetInt("limits.requests_per_minute"),
			BreakerFailures:   v.GetUint("limits.breaker_failures"),
		},
	}

	for _, f := range []struct {
		key      string
		min, max float64
		target   **float64
	}{
		{"sampling.temperature", 0, 2, &cfg.Sampling.Temperature},
		{"sampling.top_p", 0, 1, &cfg.Sampling.TopP},
	} {
		if !v.IsSet(f.key) {
			continue
		}
		val := v.GetFloat64(f.key)
		if val < f.min || val > f.max {
			return nil, fmt.Errorf("invalid value for %s: %v is outside [%v, %v]", f.key, val, f.min, f.max)
		}
		*f.target = &val
	}

	if cfg.Sampling.MaxOutputTokens < 0 {
		return nil, fmt.Errorf("invalid value for sampling.max_output_tokens: %d", cfg.Sampling.MaxOutputTokens)
	}
	if cfg.Limits.RequestsPerMinute < 0 {
		return nil, fmt.Errorf("invalid value for limits.requests_per_minute: %d", cfg.Limits.RequestsPerMinute)
	}
	if _, err := cfg.API.ParseTimeout(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadForCommand layers defaults, config.toml from configDir, WELLCHAT_*
// environment variables and the request flags registered on cmd, and returns
// the effective Config.
func LoadForCommand(cmd *cobra.Command, configDir string) (*Config, error) {
	v, err := InitViper(configDir)
	if err != nil {
		return nil, err
	}

	BindRegisteredFlags(v, cmd, RequestFlags, RequestFlagKeys())

	return FromViper(v)
}
