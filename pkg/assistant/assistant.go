// Package assistant answers health questions by turning a question and the
// recent conversation into a prompt, sending it through the request client
// and streaming the answer back to the caller.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/wellchat/pkg/client"
	"github.com/papercomputeco/wellchat/pkg/config"
	"github.com/papercomputeco/wellchat/pkg/llm"
	"github.com/papercomputeco/wellchat/pkg/llm/provider"
	"github.com/papercomputeco/wellchat/pkg/logger"
	"github.com/papercomputeco/wellchat/pkg/prompt"
)

// Assistant holds everything needed to answer a question. It is safe for
// concurrent use as long as callers pass their own history.
type Assistant struct {
	client       *client.Client
	builder      prompt.Builder
	model        string
	instructions string
	sampling     config.SamplingConfig
	logger       *slog.Logger
}

// Answer is the outcome of a completed Ask.
type Answer struct {
	Text     string
	Usage    *llm.Usage
	Duration time.Duration
}

// Option configures an Assistant created with New.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	background string
	clientOpts []client.Option
}

// WithLogger sets the logger passed down to the request client.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBackground sets the context block rendered into every prompt, e.g. the
// contents of a health summary file.
func WithBackground(text string) Option {
	return func(o *options) {
		o.background = text
	}
}

// WithClientOptions appends options for the underlying request client. They
// are applied after the ones derived from the config.
func WithClientOptions(opts ...client.Option) Option {
	return func(o *options) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// New creates an Assistant from the effective configuration and the resolved
// API key. An empty key is allowed here; Ask then fails with
// client.ErrMissingCredential before anything is sent.
func New(cfg *config.Config, apiKey string, opts ...Option) (*Assistant, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	o := &options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	prov, err := provider.New(cfg.API.Provider)
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.API.ParseTimeout()
	if err != nil {
		return nil, err
	}

	clientOpts := []client.Option{
		client.WithBaseURL(cfg.API.BaseURL),
		client.WithProvider(prov),
		client.WithAPIKey(apiKey),
		client.WithLogger(o.logger),
		client.WithRateLimit(cfg.Limits.RequestsPerMinute, 1),
		client.WithCircuitBreaker(uint32(cfg.Limits.BreakerFailures), 0),
	}
	if timeout > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(timeout))
	}
	clientOpts = append(clientOpts, o.clientOpts...)

	return &Assistant{
		client: client.New(clientOpts...),
		builder: prompt.Builder{
			Prefix:     cfg.Assistant.PromptPrefix,
			Context:    o.background,
			MaxHistory: cfg.Assistant.MaxHistory,
		},
		model:        cfg.API.Model,
		instructions: cfg.Assistant.Instructions,
		sampling:     cfg.Sampling,
		logger:       o.logger,
	}, nil
}

// Request builds the response request for question given history.
func (a *Assistant) Request(history []llm.Message, question string) *llm.ResponseRequest {
	req := &llm.ResponseRequest{
		Model:        a.model,
		Input:        a.builder.Build(history, question),
		Instructions: a.instructions,
		Stream:       true,
		Temperature:  a.sampling.Temperature,
		TopP:         a.sampling.TopP,
	}
	if a.sampling.MaxOutputTokens > 0 {
		n := a.sampling.MaxOutputTokens
		req.MaxOutputTokens = &n
	}
	return req
}

// Ask sends question and copies each delta to w as it arrives. The returned
// Answer carries the full text. On a mid-stream failure the text received so
// far is returned together with the error.
func (a *Assistant) Ask(ctx context.Context, history []llm.Message, question string, w io.Writer) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question is empty")
	}

	start := time.Now()
	r, err := a.client.Stream(ctx, a.Request(history, question))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var sb strings.Builder
	for delta, err := range r.Deltas() {
		if err != nil {
			return &Answer{Text: sb.String(), Duration: time.Since(start)}, err
		}
		sb.WriteString(delta)
		if w != nil {
			if _, err := io.WriteString(w, delta); err != nil {
				return &Answer{Text: sb.String(), Duration: time.Since(start)}, fmt.Errorf("writing answer: %w", err)
			}
		}
	}

	stats := r.Stats()
	answer := &Answer{
		Text:     sb.String(),
		Usage:    stats.Usage,
		Duration: time.Since(start),
	}

	a.logger.Debug("stream finished",
		"deltas", stats.Deltas,
		"skipped", stats.Skipped,
		"duration", answer.Duration,
	)

	return answer, nil
}

// Collect is Ask without a writer.
func (a *Assistant) Collect(ctx context.Context, history []llm.Message, question string) (*Answer, error) {
	return a.Ask(ctx, history, question, nil)
}

// Turn returns the two messages that record a completed exchange.
func Turn(question, answer string) []llm.Message {
	return []llm.Message{
		llm.NewTextMessage(llm.RoleUser, strings.TrimSpace(question)),
		llm.NewTextMessage(llm.RoleAssistant, answer),
	}
}
