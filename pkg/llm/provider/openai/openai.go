// Package openai implements the OpenAI Responses API wire format.
package openai

import (
	"encoding/json"
	"errors"

	"github.com/papercomputeco/wellchat/pkg/llm"
)

const responsesPath = "/v1/responses"

// provider implements the Provider interface for OpenAI's Responses API.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "openai"
}

func (o *provider) Path() string {
	return responsesPath
}

func (o *provider) BuildRequest(req *llm.ResponseRequest) ([]byte, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if req.Model == "" {
		return nil, errors.New("model is required")
	}

	return json.Marshal(responsesRequest{
		Model:           req.Model,
		Input:           req.Input,
		Instructions:    req.Instructions,
		Stream:          req.Stream,
		MaxOutputTokens: req.MaxOutputTokens,
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		Metadata:        req.Metadata,
	})
}

func (o *provider) ParseStreamChunk(payload []byte) (*llm.StreamChunk, error) {
	var ev streamEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}

	switch ev.Type {
	case EventOutputTextDelta:
		var text string
		if err := json.Unmarshal(ev.Delta, &text); err != nil || text == "" {
			// Absent, null, empty or non-string deltas carry no text.
			return nil, nil
		}
		return &llm.StreamChunk{Type: ev.Type, Delta: text}, nil

	case EventResponseCompleted, EventResponseIncomplete, EventResponseFailed:
		chunk := &llm.StreamChunk{Type: ev.Type, Done: true}
		if ev.Response != nil && ev.Response.Usage != nil {
			chunk.Usage = &llm.Usage{
				InputTokens:  ev.Response.Usage.InputTokens,
				OutputTokens: ev.Response.Usage.OutputTokens,
				TotalTokens:  ev.Response.Usage.TotalTokens,
			}
		}
		return chunk, nil

	default:
		return nil, nil
	}
}
