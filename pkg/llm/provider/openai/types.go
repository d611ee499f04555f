package openai

import "encoding/json"

// Responses API streaming event types the decoder acts on. Every other type
// is skipped.
const (
	EventOutputTextDelta    = "response.output_text.delta"
	EventResponseCompleted  = "response.completed"
	EventResponseIncomplete = "response.incomplete"
	EventResponseFailed     = "response.failed"
)

// responsesRequest represents the OpenAI Responses API request format.
type responsesRequest struct {
	Model           string            `json:"model"`
	Input           string            `json:"input"`
	Instructions    string            `json:"instructions,omitempty"`
	Stream          bool              `json:"stream,omitempty"`
	MaxOutputTokens *int              `json:"max_output_tokens,omitempty"`
	Temperature     *float64          `json:"temperature,omitempty"`
	TopP            *float64          `json:"top_p,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// streamEvent is a single Responses API streaming event. Only the fields
// wellchat reads are declared.
type streamEvent struct {
	Type string `json:"type"`

	// Delta is kept raw so that a non-string value is treated as an
	// unrecognized shape instead of failing the whole event.
	Delta json.RawMessage `json:"delta,omitempty"`

	// Response is present on lifecycle events.
	Response *struct {
		ID     string          `json:"id"`
		Status string          `json:"status"`
		Usage  *responsesUsage `json:"usage,omitempty"`
	} `json:"response,omitempty"`
}

type responsesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}
