package sse

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder reassembles lines from a sequence of byte chunks.
//
// ┌──────────────┐   ┌──────────────┐   ┌──────────────┐
// │ []byte chunk │──▶│ UTF-8 decode │──▶│ line buffer  │──▶ complete lines
// └──────────────┘   └──────────────┘   └──────────────┘
//
// Chunk boundaries are arbitrary: a multi-byte character or a line may be
// split across any number of chunks. Incomplete UTF-8 sequences are carried
// over to the next chunk and the text after the last "\n" is held until its
// terminator arrives.
//
// A Decoder is owned by a single stream and is not safe for concurrent use.
type Decoder struct {
	utf8 transform.Transformer

	// carry holds the bytes of a multi-byte sequence that was cut off at the
	// end of the previous chunk. At most utf8.UTFMax-1 bytes.
	carry []byte

	// pending is the text received after the last line terminator.
	pending strings.Builder
}

// NewDecoder returns a Decoder with empty state.
func NewDecoder() *Decoder {
	return &Decoder{
		utf8: unicode.UTF8.NewDecoder(),
	}
}

// Feed decodes chunk and returns the lines it completed, in order, without
// their "\n" terminators. The trailing partial line is retained for the next
// call. Ill-formed UTF-8 is replaced with U+FFFD.
func (d *Decoder) Feed(chunk []byte) []string {
	text := d.decode(chunk)
	if !strings.Contains(text, "\n") {
		d.pending.WriteString(text)
		return nil
	}

	d.pending.WriteString(text)
	lines := strings.Split(d.pending.String(), "\n")

	d.pending.Reset()
	d.pending.WriteString(lines[len(lines)-1])

	return lines[:len(lines)-1]
}

// Pending returns the partial line buffered after the last terminator.
func (d *Decoder) Pending() string {
	return d.pending.String()
}

// decode converts chunk to text, holding back a trailing incomplete
// multi-byte sequence until the next call.
func (d *Decoder) decode(chunk []byte) string {
	src := chunk
	if len(d.carry) > 0 {
		src = append(d.carry, chunk...)
		d.carry = nil
	}

	if len(src) == 0 {
		return ""
	}

	var out strings.Builder
	// An ill-formed byte expands to the 3 byte replacement character.
	dst := make([]byte, 3*len(src)+utf8.UTFMax)

	for {
		nDst, nSrc, err := d.utf8.Transform(dst, src, false)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch {
		case err == nil:
			return out.String()

		case errors.Is(err, transform.ErrShortSrc):
			d.carry = append([]byte(nil), src...)
			return out.String()

		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				dst = make([]byte, 2*len(dst))
			}

		default:
			// The UTF-8 decoder replaces ill-formed input rather than
			// failing, so this is unreachable in practice.
			return out.String()
		}
	}
}
