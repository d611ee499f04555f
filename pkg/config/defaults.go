package config

const (
	defaultProvider = "openai"
	defaultBaseURL  = "https://api.openai.com"
	defaultModel    = "gpt-4.1-mini"
	defaultTimeout  = "5m"

	defaultInstructions = "You are a supportive health and wellness assistant. " +
		"Give clear, practical answers grounded in the context you are given. " +
		"You are not a doctor: recommend seeing a professional for diagnosis or urgent symptoms."
	defaultMaxHistory = 10

	defaultBreakerFailures = 5
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Provider: defaultProvider,
			BaseURL:  defaultBaseURL,
			Model:    defaultModel,
			Timeout:  defaultTimeout,
		},
		Assistant: AssistantConfig{
			Instructions: defaultInstructions,
			MaxHistory:   defaultMaxHistory,
		},
		Limits: LimitsConfig{
			BreakerFailures: defaultBreakerFailures,
		},
	}
}
