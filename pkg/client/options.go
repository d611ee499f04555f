package client

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/papercomputeco/wellchat/pkg/llm/provider"
	"github.com/papercomputeco/wellchat/pkg/stream"
)

// Default circuit breaker settings.
const (
	defaultBreakerTimeout  = 30 * time.Second
	defaultBreakerInterval = 60 * time.Second
)

// Option configures a Client created with New.
type Option func(*Client)

// WithBaseURL sets the endpoint base URL. The provider path is appended.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the HTTP client used to send requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds a whole request, including reading the streamed body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used by the client and by the Readers it returns.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAPIKey sets the default credential. A request's own APIKey overrides it.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithProvider sets the wire format. Defaults to the OpenAI Responses API.
func WithProvider(p provider.Provider) Option {
	return func(c *Client) {
		if p != nil {
			c.prov = p
		}
	}
}

// WithHeader adds an extra header to every request. Headers the client
// manages itself (Authorization, Content-Type, hop-by-hop headers) are
// ignored.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// WithRateLimit caps outgoing requests at requestsPerMinute with the given
// burst. Stream waits for a token, honouring its context. Zero disables the
// limiter.
func WithRateLimit(requestsPerMinute, burst int) Option {
	return func(c *Client) {
		if requestsPerMinute <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerMinute)/60.0, burst)
	}
}

// WithLimiter sets the rate limiter directly.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithCircuitBreaker opens a breaker after maxFailures consecutive failed
// requests. While open, Stream fails fast without contacting the endpoint
// until timeout has passed. Zero maxFailures disables the breaker.
func WithCircuitBreaker(maxFailures uint32, timeout time.Duration) Option {
	return func(c *Client) {
		c.breakerFailures = maxFailures
		c.breakerTimeout = timeout
	}
}

// WithStreamOptions appends options applied to every returned Reader, after
// the client's own context, logger and provider.
func WithStreamOptions(opts ...stream.Option) Option {
	return func(c *Client) {
		c.streamOpts = append(c.streamOpts, opts...)
	}
}
