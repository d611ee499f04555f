package llm

// StreamChunk represents a single recognized event in a streaming response.
// This is the internal representation produced by a provider after parsing
// its specific streaming format.
type StreamChunk struct {
	// Type is the provider's event discriminant
	// (e.g. "response.output_text.delta").
	Type string `json:"type"`

	// Delta is the incremental assistant text. Only set for text delta
	// events and never empty when set.
	Delta string `json:"delta,omitempty"`

	// Whether the provider reported the response as finished.
	// The stream itself still ends on the transport's terminal sentinel.
	Done bool `json:"done,omitempty"`

	// Usage metrics (typically only present on the completion event)
	Usage *Usage `json:"usage,omitempty"`
}

// HasText reports whether the chunk carries assistant text.
func (c *StreamChunk) HasText() bool {
	return c != nil && c.Delta != ""
}
