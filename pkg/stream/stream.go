// Package stream decodes a streaming LLM response body into a lazy,
// single-pass sequence of assistant text deltas.
//
// ┌───────────────┐   ┌─────────────┐   ┌──────────────────┐   ┌──────────┐
// │ io.ReadCloser │──▶│ sse.Decoder │──▶│ provider filter  │──▶│  deltas  │
// └───────────────┘   └─────────────┘   └──────────────────┘   └──────────┘
//
// The stream ends successfully on the "data: [DONE]" sentinel or when the
// transport reports end of stream. Malformed payloads and events without
// text are skipped. A transport read error ends the stream at the read that
// failed; deltas returned before it stand.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/papercomputeco/wellchat/pkg/llm"
	"github.com/papercomputeco/wellchat/pkg/llm/provider"
	"github.com/papercomputeco/wellchat/pkg/llm/provider/openai"
	"github.com/papercomputeco/wellchat/pkg/logger"
	"github.com/papercomputeco/wellchat/pkg/sse"
)

// ErrClosed is returned by Next when the Reader was closed before the
// stream reached its end.
var ErrClosed = errors.New("stream closed")

// Stats counts what a Reader has seen so far.
type Stats struct {
	// Lines is the number of complete lines extracted from the body.
	Lines int

	// Records is the number of "data:" lines, excluding the sentinel.
	Records int

	// Deltas is the number of text deltas returned.
	Deltas int

	// Skipped is the number of data records dropped as malformed JSON or
	// as events without text.
	Skipped int

	// Usage is the token usage reported by the provider, if any.
	Usage *llm.Usage
}

// Reader pulls deltas from a streaming response body. It is owned by a
// single consumer and is not safe for concurrent use. Close and context
// cancellation are the exceptions: either may be called from another
// goroutine to unblock a pending Next.
type Reader struct {
	body     io.ReadCloser
	decoder  *sse.Decoder
	provider provider.Provider
	logger   *slog.Logger
	tee      io.Writer
	ctx      context.Context
	bufSize  int

	buf   []byte
	lines []string

	// readErr is the error returned alongside the last chunk. It is reported
	// once every line of that chunk has been handled.
	readErr error

	done bool
	err  error

	// closed is set by Close, possibly from another goroutine. Only the
	// consuming goroutine turns it into a terminal ErrClosed.
	closed atomic.Bool

	stats Stats

	stopAfter func() bool
	closeOnce sync.Once
	closeErr  error
}

// NewReader returns a Reader over body. The Reader owns body from now on and
// closes it on every exit path: sentinel, end of stream, read error, Close,
// early loop exit in Deltas, and context cancellation.
func NewReader(body io.ReadCloser, opts ...Option) *Reader {
	r := &Reader{
		body:     body,
		decoder:  sse.NewDecoder(),
		provider: openai.New(),
		logger:   logger.Nop(),
		ctx:      context.Background(),
		bufSize:  defaultBufferSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.buf = make([]byte, r.bufSize)
	r.stopAfter = context.AfterFunc(r.ctx, func() {
		_ = r.closeBody()
	})

	return r
}

// Next returns the next delta. It blocks only while waiting for the next
// chunk from the body.
//
// Next returns io.EOF once the stream has ended normally. A transport
// failure is returned wrapped; if the Reader's context was cancelled the
// context error is returned instead. After the first non-nil error every
// call returns that same error without touching the body again.
func (r *Reader) Next() (string, error) {
	for {
		if r.done {
			return "", r.err
		}

		if r.closed.Load() {
			r.finish(ErrClosed)
			continue
		}

		if err := r.ctx.Err(); err != nil {
			r.finish(err)
			continue
		}

		for len(r.lines) > 0 {
			line := r.lines[0]
			r.lines = r.lines[1:]

			text, stop := r.handleLine(line)
			if stop {
				r.finish(io.EOF)
				return "", io.EOF
			}
			if text != "" {
				r.stats.Deltas++
				return text, nil
			}
		}

		if r.readErr != nil {
			r.finishRead(r.readErr)
			continue
		}

		r.readChunk()
	}
}

// Deltas returns the remaining deltas as a single-pass sequence. Each
// element is (delta, nil); a transport failure is delivered as one final
// ("", err) element. Normal termination yields no error element.
//
// Leaving the loop early closes the body.
func (r *Reader) Deltas() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer r.Close()

		for {
			text, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// Close releases the body. It is safe to call more than once, after the
// stream has ended, and while another goroutine is blocked in Next. Unless
// the stream had already ended, the next call to Next returns ErrClosed.
func (r *Reader) Close() error {
	r.closed.Store(true)
	r.stopAfter()
	return r.closeBody()
}

// Stats returns counters for the stream so far.
func (r *Reader) Stats() Stats {
	return r.stats
}

// Deltas is shorthand for NewReader(body, opts...).Deltas().
func Deltas(body io.ReadCloser, opts ...Option) iter.Seq2[string, error] {
	return NewReader(body, opts...).Deltas()
}

// Collect concatenates every delta of seq. On error it returns the text
// collected before the failure together with the error.
func Collect(seq iter.Seq2[string, error]) (string, error) {
	var sb strings.Builder
	for text, err := range seq {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// readChunk performs the single blocking read and splits what arrived into
// lines. A read error is held until those lines have been handled.
func (r *Reader) readChunk() {
	n, err := r.body.Read(r.buf)
	if n > 0 {
		chunk := r.buf[:n]
		r.teeChunk(chunk)
		r.lines = r.decoder.Feed(chunk)
	}
	if err != nil {
		r.readErr = err
	}
}

// handleLine processes one complete line. It returns the delta text, if the
// line produced one, and whether the terminal sentinel was seen.
func (r *Reader) handleLine(line string) (string, bool) {
	r.stats.Lines++

	rec := sse.ParseRecord(line)
	switch rec.Kind {
	case sse.RecordDone:
		return "", true
	case sse.RecordIgnored:
		return "", false
	}

	r.stats.Records++

	chunk, err := r.provider.ParseStreamChunk([]byte(rec.Payload))
	if err != nil {
		r.stats.Skipped++
		r.logger.Debug("skipping malformed stream payload",
			"error", err,
			"payload", rec.Payload,
		)
		return "", false
	}
	if chunk == nil {
		r.stats.Skipped++
		return "", false
	}

	r.logger.Debug("decoded stream event", "type", chunk.Type)

	if chunk.Usage != nil {
		r.stats.Usage = chunk.Usage
	}
	if !chunk.HasText() {
		r.stats.Skipped++
		return "", false
	}

	return chunk.Delta, false
}

// finishRead ends the stream after the body reported err.
func (r *Reader) finishRead(err error) {
	if errors.Is(err, io.EOF) {
		if pending := r.decoder.Pending(); pending != "" {
			r.logger.Debug("discarding unterminated line at end of stream", "line", pending)
		}
		r.finish(io.EOF)
		return
	}

	// A read interrupted by cancellation reports the cancellation itself.
	if ctxErr := r.ctx.Err(); ctxErr != nil {
		r.finish(ctxErr)
		return
	}

	r.finish(fmt.Errorf("reading stream: %w", err))
}

// finish records the terminal result and releases the body.
func (r *Reader) finish(err error) {
	r.done = true
	r.err = err
	r.lines = nil
	r.readErr = nil
	r.buf = nil

	r.stopAfter()
	_ = r.closeBody()

	r.logger.Debug("stream finished",
		"reason", err,
		"lines", r.stats.Lines,
		"records", r.stats.Records,
		"deltas", r.stats.Deltas,
		"skipped", r.stats.Skipped,
	)
}

func (r *Reader) closeBody() error {
	r.closeOnce.Do(func() {
		if r.body != nil {
			r.closeErr = r.body.Close()
		}
	})
	return r.closeErr
}

func (r *Reader) teeChunk(chunk []byte) {
	if r.tee == nil {
		return
	}
	if _, err := r.tee.Write(chunk); err != nil {
		r.logger.Warn("disabling stream tee after write failure", "error", err)
		r.tee = nil
	}
}
