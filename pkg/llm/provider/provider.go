package provider

import "github.com/papercomputeco/wellchat/pkg/llm"

// Provider defines the interface for an LLM API wire format.
// Each provider implementation knows how to shape an outbound request and
// how to recognize the streaming events of its specific API.
type Provider interface {
	// Name returns the canonical provider name (e.g., "openai").
	Name() string

	// Path returns the endpoint path appended to the configured base URL.
	Path() string

	// BuildRequest converts the internal request into the provider's JSON body.
	BuildRequest(req *llm.ResponseRequest) ([]byte, error)

	// ParseStreamChunk converts a single streaming data payload into the
	// internal format.
	// Returns an error if the payload is not valid JSON.
	// Returns (nil, nil) if the event should be skipped (lifecycle or
	// status events without visible text, unknown event types).
	ParseStreamChunk(payload []byte) (*llm.StreamChunk, error)
}
