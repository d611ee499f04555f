package stream

import (
	"context"
	"io"
	"log/slog"

	"github.com/papercomputeco/wellchat/pkg/llm/provider"
)

const defaultBufferSize = 4 * 1024

// Option configures a Reader created with NewReader.
type Option func(*Reader)

// WithContext ties the Reader to ctx. Cancelling ctx closes the underlying
// body, which unblocks a pending read; the Reader then reports ctx.Err().
func WithContext(ctx context.Context) Option {
	return func(r *Reader) {
		r.ctx = ctx
	}
}

// WithLogger sets the logger used for debug-level diagnostics. Logging never
// changes the sequence of deltas.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProvider sets the wire format used to recognize delta events.
// Defaults to the OpenAI Responses API.
func WithProvider(p provider.Provider) Option {
	return func(r *Reader) {
		if p != nil {
			r.provider = p
		}
	}
}

// WithTee copies every raw chunk read from the body to w, e.g. to dump the
// SSE stream to a file while debugging. A failed write disables the tee and
// is logged; it never aborts the stream.
func WithTee(w io.Writer) Option {
	return func(r *Reader) {
		r.tee = w
	}
}

// WithBufferSize sets the size of the transport read buffer.
func WithBufferSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.bufSize = n
		}
	}
}
