package llm

// ResponseRequest represents a provider-agnostic request for a single
// assistant response. The prompt has already been assembled by the caller;
// providers only shape it into their wire format.
type ResponseRequest struct {
	// Model name (e.g., "gpt-4.1-mini")
	Model string `json:"model"`

	// Input is the fully assembled prompt text.
	Input string `json:"input"`

	// Instructions is the system-level guidance sent alongside the input.
	Instructions string `json:"instructions,omitempty"`

	// Whether to stream the response
	Stream bool `json:"stream"`

	// Generation parameters
	MaxOutputTokens *int     `json:"max_output_tokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`

	// APIKey overrides the client's default credential for this request only.
	APIKey string `json:"-"`

	// Metadata is passed through to the provider verbatim.
	Metadata map[string]string `json:"metadata,omitempty"`
}
