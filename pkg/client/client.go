// Package client sends a single streaming response request to an LLM endpoint
// and hands the response body to a stream.Reader.
//
//	caller ──▶ Client.Stream ──▶ HTTP POST ──▶ endpoint
//	                                  │
//	                 *stream.Reader ◀─┘ (2xx response body)
//
// Failures that happen before streaming begins (missing credential, non-2xx
// status, open circuit breaker) are returned synchronously from Stream.
// Nothing is retried.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/papercomputeco/wellchat/pkg/llm"
	"github.com/papercomputeco/wellchat/pkg/llm/provider"
	"github.com/papercomputeco/wellchat/pkg/llm/provider/openai"
	"github.com/papercomputeco/wellchat/pkg/logger"
	"github.com/papercomputeco/wellchat/pkg/stream"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultTimeout bounds a whole request including the streamed body.
	// LLM responses can be slow, especially long ones.
	DefaultTimeout = 5 * time.Minute

	// MetadataRequestID is the metadata key carrying the request id.
	MetadataRequestID = "client_request_id"
)

// Client is the request initiator. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	prov       provider.Provider
	logger     *slog.Logger
	apiKey     string
	headers    http.Header

	limiter *rate.Limiter

	breakerFailures uint32
	breakerTimeout  time.Duration
	breaker         *gobreaker.CircuitBreaker[*http.Response]

	streamOpts []stream.Option
}

// New creates a Client. Without options it talks to the OpenAI Responses API
// at DefaultBaseURL and has no default credential.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		prov:    openai.New(),
		logger:  logger.Nop(),
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	if c.breakerFailures > 0 {
		c.breaker = c.newBreaker()
	}

	return c
}

// Stream sends req and returns a Reader over the streamed response body.
//
// The request's own APIKey wins over the client default. Stream returns
// ErrMissingCredential when neither is set and a *RequestError for a non-2xx
// response, in both cases without streaming anything. Cancelling ctx aborts
// the request or, once streaming, closes the body.
func (c *Client) Stream(ctx context.Context, req *llm.ResponseRequest) (*stream.Reader, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}

	key := req.APIKey
	if key == "" {
		key = c.apiKey
	}
	if key == "" {
		return nil, ErrMissingCredential
	}

	requestID := uuid.NewString()

	out := *req
	out.Stream = true
	out.Metadata = maps.Clone(req.Metadata)
	if out.Metadata == nil {
		out.Metadata = make(map[string]string, 1)
	}
	if _, ok := out.Metadata[MetadataRequestID]; !ok {
		out.Metadata[MetadataRequestID] = requestID
	}

	body, err := c.prov.BuildRequest(&out)
	if err != nil {
		return nil, fmt.Errorf("could not build %s request: %w", c.prov.Name(), err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	url := strings.TrimRight(c.baseURL, "/") + c.prov.Path()
	send := func() (*http.Response, error) {
		return c.send(ctx, url, key, requestID, body)
	}

	var resp *http.Response
	if c.breaker != nil {
		resp, err = c.breaker.Execute(send)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("endpoint circuit open: %w", err)
		}
	} else {
		resp, err = send()
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("streaming response",
		"request_id", requestID,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	opts := append([]stream.Option{
		stream.WithContext(ctx),
		stream.WithLogger(c.logger.With("request_id", requestID)),
		stream.WithProvider(c.prov),
	}, c.streamOpts...)

	return stream.NewReader(resp.Body, opts...), nil
}

// send performs one HTTP round trip. A non-2xx response is drained, closed,
// and returned as a *RequestError.
func (c *Client) send(ctx context.Context, url, key, requestID string, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	setExtraHeaders(httpReq, c.headers)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+key)
	httpReq.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug("sending request",
		"url", url,
		"provider", c.prov.Name(),
		"request_id", requestID,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "request_id", requestID, "error", err)
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.logger.Debug("could not read error body", "request_id", requestID, "error", readErr)
		}

		c.logger.Debug("endpoint returned error",
			"request_id", requestID,
			"status", resp.StatusCode,
			"duration", time.Since(start),
		)
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return resp, nil
}

func (c *Client) newBreaker() *gobreaker.CircuitBreaker[*http.Response] {
	timeout := c.breakerTimeout
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}
	maxFailures := c.breakerFailures

	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "endpoint:" + c.prov.Name(),
		MaxRequests: 1,
		Interval:    defaultBreakerInterval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// A rejected request (bad key, bad model) says nothing about
			// endpoint health.
			var reqErr *RequestError
			if errors.As(err, &reqErr) {
				return !reqErr.Temporary()
			}
			return errors.Is(err, context.Canceled)
		},
	})
}
