package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --model
// on both "wellchat ask" and "wellchat chat").
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "api.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagProvider        = "provider"
	FlagBaseURL         = "base-url"
	FlagModel           = "model"
	FlagTimeout         = "timeout"
	FlagTemperature     = "temperature"
	FlagTopP            = "top-p"
	FlagMaxOutputTokens = "max-output-tokens"
	FlagInstructions    = "instructions"
	FlagPromptPrefix    = "prompt-prefix"
	FlagMaxHistory      = "max-history"
	FlagRateLimit       = "rate-limit"
)

// RequestFlags are the flags shared by every command that sends a request.
var RequestFlags = FlagSet{
	FlagProvider:        {Name: "provider", ViperKey: "api.provider", Description: "Wire format of the endpoint"},
	FlagBaseURL:         {Name: "base-url", Shorthand: "u", ViperKey: "api.base_url", Description: "Base URL of the Responses API endpoint"},
	FlagModel:           {Name: "model", Shorthand: "m", ViperKey: "api.model", Description: "Model to use"},
	FlagTimeout:         {Name: "timeout", ViperKey: "api.timeout", Description: "Request timeout including the streamed answer (e.g. 90s, 5m)"},
	FlagTemperature:     {Name: "temperature", Shorthand: "t", ViperKey: "sampling.temperature", Description: "Sampling temperature between 0 and 2"},
	FlagTopP:            {Name: "top-p", ViperKey: "sampling.top_p", Description: "Nucleus sampling probability mass between 0 and 1"},
	FlagMaxOutputTokens: {Name: "max-output-tokens", ViperKey: "sampling.max_output_tokens", Description: "Upper bound on generated tokens (0 for endpoint default)"},
	FlagInstructions:    {Name: "instructions", ViperKey: "assistant.instructions", Description: "System instructions sent with every request"},
	FlagPromptPrefix:    {Name: "prompt-prefix", ViperKey: "assistant.prompt_prefix", Description: "Text placed at the start of every prompt"},
	FlagMaxHistory:      {Name: "max-history", ViperKey: "assistant.max_history", Description: "Number of past messages included in the prompt"},
	FlagRateLimit:       {Name: "rate-limit", ViperKey: "limits.requests_per_minute", Description: "Maximum requests per minute (0 for unlimited)"},
}

// RequestFlagKeys lists every key of RequestFlags.
func RequestFlagKeys() []string {
	return []string{
		FlagProvider, FlagBaseURL, FlagModel, FlagTimeout,
		FlagTemperature, FlagTopP, FlagMaxOutputTokens,
		FlagInstructions, FlagPromptPrefix, FlagMaxHistory,
		FlagRateLimit,
	}
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloat64Flag registers a float64 flag on cmd from the given FlagSet.
// Float keys have no default; read them through viper's IsSet so an unset
// flag is distinguishable from zero.
func AddFloat64Flag(cmd *cobra.Command, fs FlagSet, registryKey string, target *float64) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, 0, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, 0, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}

// AddRequestFlags registers every entry of RequestFlags on cmd. The values
// are read back through viper once BindRegisteredFlags has run, so the flag
// targets are not kept.
func AddRequestFlags(cmd *cobra.Command) {
	AddStringFlag(cmd, RequestFlags, FlagProvider, new(string))
	AddStringFlag(cmd, RequestFlags, FlagBaseURL, new(string))
	AddStringFlag(cmd, RequestFlags, FlagModel, new(string))
	AddStringFlag(cmd, RequestFlags, FlagTimeout, new(string))
	AddFloat64Flag(cmd, RequestFlags, FlagTemperature, new(float64))
	AddFloat64Flag(cmd, RequestFlags, FlagTopP, new(float64))
	AddIntFlag(cmd, RequestFlags, FlagMaxOutputTokens, new(int))
	AddStringFlag(cmd, RequestFlags, FlagInstructions, new(string))
	AddStringFlag(cmd, RequestFlags, FlagPromptPrefix, new(string))
	AddIntFlag(cmd, RequestFlags, FlagMaxHistory, new(int))
	AddIntFlag(cmd, RequestFlags, FlagRateLimit, new(int))
}
